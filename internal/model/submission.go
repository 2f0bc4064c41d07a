package model

import (
	"fmt"
	"math"
	"time"
)

// VectorDims is the number of semantic axes in a concept vector.
const VectorDims = 5

// Dimension identifies one semantic axis of a concept vector.
type Dimension int

const (
	DimTechnicalComplexity Dimension = 0
	DimBusinessViability   Dimension = 1
	DimConceptualNovelty   Dimension = 2
	DimUserFocus           Dimension = 3
	DimScalability         Dimension = 4
)

func (d Dimension) String() string {
	switch d {
	case DimTechnicalComplexity:
		return "technical_complexity"
	case DimBusinessViability:
		return "business_viability"
	case DimConceptualNovelty:
		return "conceptual_novelty"
	case DimUserFocus:
		return "user_focus"
	case DimScalability:
		return "scalability"
	default:
		return "unknown"
	}
}

// ConceptVector is a fixed-length semantic summary of a project description.
// Each element is in [0,1] and its index carries a fixed meaning (Dimension).
type ConceptVector [VectorDims]float64

// Validate checks that every element is a finite number in [0,1].
func (v ConceptVector) Validate() error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("dimension %s: not a finite number", Dimension(i))
		}
		if x < 0 || x > 1 {
			return fmt.Errorf("dimension %s: %v out of range [0,1]", Dimension(i), x)
		}
	}
	return nil
}

// CosineSimilarity returns the cosine of the angle between v and u.
// Returns 0 when either vector has zero magnitude.
func (v ConceptVector) CosineSimilarity(u ConceptVector) float64 {
	var dot, magV, magU float64
	for i := range v {
		dot += v[i] * u[i]
		magV += v[i] * v[i]
		magU += u[i] * u[i]
	}
	if magV == 0 || magU == 0 {
		return 0
	}
	return dot / (math.Sqrt(magV) * math.Sqrt(magU))
}

// MemoryRecord is one entry in the novelty memory: the concept vector a
// submission was scored with, plus the text it was derived from. Created
// exactly once per submission and never mutated afterwards.
type MemoryRecord struct {
	SubmissionID string        `json:"submission_id"`
	Vector       ConceptVector `json:"vector"`
	Text         string        `json:"text"`
}

// SubmissionStatus tracks where a submission is in its lifecycle.
type SubmissionStatus string

const (
	StatusIdea      SubmissionStatus = "Idea"
	StatusDraft     SubmissionStatus = "Draft"
	StatusSubmitted SubmissionStatus = "Submitted"
)

// Submission is the unit of work the engine scores. The submission store is
// the system of record; this is the read model the engine consumes.
type Submission struct {
	ID           string           `json:"id" yaml:"id"`
	Title        string           `json:"title" yaml:"title"`
	Description  string           `json:"description" yaml:"description"`
	Status       SubmissionStatus `json:"status" yaml:"status"`
	CreatedAt    time.Time        `json:"created_at" yaml:"created_at"`
	LastActivity *time.Time       `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
}
