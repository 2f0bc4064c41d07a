package model

import (
	"fmt"
	"time"
)

// Review is the synthesized qualitative assessment of a submission. A
// submission may accumulate multiple reviews; the scoring aggregator reads
// them without modification.
type Review struct {
	ID               string    `json:"id"`
	SubmissionID     string    `json:"submission_id"`
	AgentLabel       string    `json:"agent_label"`
	OverallScore     int       `json:"overall_score"`     // 0-100
	NoveltyScore     int       `json:"novelty_score"`     // 0-100, computed locally, authoritative
	FeasibilityScore int       `json:"feasibility_score"` // 0-100
	ImpactScore      int       `json:"impact_score"`      // 0-100
	Reasoning        string    `json:"reasoning"`
	CreatedAt        time.Time `json:"created_at"`
}

// Validate checks that all numeric fields are inside the 0-100 scale.
func (r Review) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"overall_score", r.OverallScore},
		{"novelty_score", r.NoveltyScore},
		{"feasibility_score", r.FeasibilityScore},
		{"impact_score", r.ImpactScore},
	} {
		if f.value < 0 || f.value > 100 {
			return fmt.Errorf("%s: %d out of range [0,100]", f.name, f.value)
		}
	}
	return nil
}

// Speaker is one of the fixed debate personas.
type Speaker string

const (
	SpeakerVisionary Speaker = "Visionary" // optimistic, big-picture
	SpeakerSkeptic   Speaker = "Skeptic"   // critical, detail-focused
	SpeakerArchitect Speaker = "Architect" // technical, scalability-focused
)

// Valid reports whether s is one of the three known personas.
func (s Speaker) Valid() bool {
	switch s {
	case SpeakerVisionary, SpeakerSkeptic, SpeakerArchitect:
		return true
	}
	return false
}

// Sentiment classifies the tone of a debate turn.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is a known sentiment.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// DebateTurn is a single utterance in a simulated multi-persona debate.
// Turn sequences are regenerated on each request and never persisted.
type DebateTurn struct {
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
}

// Validate checks the enum fields and that content is present.
func (t DebateTurn) Validate() error {
	if !t.Speaker.Valid() {
		return fmt.Errorf("speaker: unknown persona %q", string(t.Speaker))
	}
	if !t.Sentiment.Valid() {
		return fmt.Errorf("sentiment: unknown value %q", string(t.Sentiment))
	}
	if t.Content == "" {
		return fmt.Errorf("content: empty")
	}
	return nil
}

// RiskLevel classifies a failure-risk probability.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskCritical RiskLevel = "Critical"
)

// RiskAssessment is the output of the failure-risk heuristic. It is
// recomputed on demand from its inputs and carries no hidden state.
type RiskAssessment struct {
	Probability          int        `json:"probability"` // 0-99
	RiskLevel            RiskLevel  `json:"risk_level"`
	PredictedFailureDate *time.Time `json:"predicted_failure_date,omitempty"`
	Recommendations      []string   `json:"recommendations"`
}
