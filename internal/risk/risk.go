// Package risk estimates the chance a submission fails to ship before its
// deadline. This is a transparent additive heuristic, not a model: results
// are exactly reproducible from the inputs.
package risk

import (
	"math"
	"time"

	"github.com/mkravets/arbiter/internal/model"
)

const (
	// staleDefaultDays is assumed when no activity date is known.
	staleDefaultDays = 10

	inactivityThresholdDays = 5
	inactivityPenalty       = 40

	timePressureWindowDays = 7
	timePressurePenalty    = 50

	draftPenalty = 10

	maxProbability = 99
)

// Predictor computes risk assessments. The clock is injected so results are
// deterministic under test.
type Predictor struct {
	nowFunc func() time.Time
}

// NewPredictor creates a predictor using the wall clock.
func NewPredictor() *Predictor {
	return &Predictor{nowFunc: time.Now}
}

// NewPredictorAt creates a predictor pinned to a fixed clock.
func NewPredictorAt(now func() time.Time) *Predictor {
	return &Predictor{nowFunc: now}
}

// Predict scores failure risk from activity recency, submission status, and
// deadline pressure. A nil lastActivity is treated as stale by default.
func (p *Predictor) Predict(lastActivity *time.Time, status model.SubmissionStatus, deadline time.Time) model.RiskAssessment {
	now := p.nowFunc()

	daysSinceActivity := staleDefaultDays
	if lastActivity != nil {
		daysSinceActivity = int(now.Sub(*lastActivity).Hours() / 24)
	}

	// Partial days still count as a day of runway: 6.5 days out rounds up
	// to 7 and stays outside the time-pressure window.
	daysUntilDeadline := int(math.Ceil(deadline.Sub(now).Hours() / 24))

	score := 0
	var recommendations []string

	if daysSinceActivity > inactivityThresholdDays {
		score += inactivityPenalty
		recommendations = append(recommendations, "Code stagnant. Immediate commit required to avoid project drift.")
	}

	if daysUntilDeadline < timePressureWindowDays && status == model.StatusIdea {
		score += timePressurePenalty
		recommendations = append(recommendations, "Critical timeline. Switch to MVP scope immediately.")
	}

	if status == model.StatusDraft {
		score += draftPenalty
	}

	probability := score
	if probability > maxProbability {
		probability = maxProbability
	}

	level := model.RiskLow
	switch {
	case probability > 70:
		level = model.RiskCritical
	case probability > 30:
		level = model.RiskModerate
	}

	var predictedFailure *time.Time
	if probability > 60 {
		t := now.Add(time.Duration(daysUntilDeadline) * 24 * time.Hour / 2)
		predictedFailure = &t
	}

	return model.RiskAssessment{
		Probability:          probability,
		RiskLevel:            level,
		PredictedFailureDate: predictedFailure,
		Recommendations:      recommendations,
	}
}
