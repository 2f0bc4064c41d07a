// Package review synthesizes a qualitative assessment of a submission:
// locally computed novelty plus an oracle critique. The pipeline always
// terminates with a usable Review; oracle failures degrade to a
// deterministic fallback and are never surfaced to the caller.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/novelty"
	"github.com/mkravets/arbiter/internal/oracle"
)

const (
	// DefaultAgentLabel is used when the oracle does not name itself or the
	// fallback path runs.
	DefaultAgentLabel = "Research Architect"

	fallbackFeasibility = 75
	fallbackImpact      = 80
)

const reviewSystemPromptFmt = `You are an Autonomous Research Reviewer. Analyze this project idea:
Title: %s
Description: %s

Context: It has a computed Novelty Score of %d/100 based on vector comparison against %d other projects.

Output a JSON object with:
- agentName: string (e.g. "Research Architect")
- score: number (0-100)
- noveltyScore: number (should match input %d)
- feasibilityScore: number (0-100)
- impactScore: number (0-100)
- reasoning: string (Markdown format, max 100 words)

Output ONLY the JSON object.`

// Synthesizer builds reviews from novelty scores and oracle critiques.
type Synthesizer struct {
	oracle  oracle.Oracle // nil when disabled
	scorer  *novelty.Scorer
	nowFunc func() time.Time
}

// NewSynthesizer creates a synthesizer. A nil oracle means every review is
// built on the deterministic fallback.
func NewSynthesizer(o oracle.Oracle, scorer *novelty.Scorer) *Synthesizer {
	return &Synthesizer{
		oracle:  o,
		scorer:  scorer,
		nowFunc: time.Now,
	}
}

// Synthesize produces a Review for the submission. The novelty score is
// computed locally and is authoritative; the oracle contributes advisory
// critique only. Oracle trouble never produces an error; only a broken
// novelty store does.
func (s *Synthesizer) Synthesize(ctx context.Context, sub model.Submission) (model.Review, error) {
	res, err := s.scorer.ScoreNovelty(ctx, sub.ID, sub.Description)
	if err != nil {
		return model.Review{}, fmt.Errorf("scoring novelty: %w", err)
	}

	review := s.critique(ctx, sub, res)
	review.ID = uuid.NewString()
	review.SubmissionID = sub.ID
	review.CreatedAt = s.nowFunc().UTC()
	return review, nil
}

// critique asks the oracle for the qualitative fields, validating its output
// against the required shape. Any failure yields the fallback review.
func (s *Synthesizer) critique(ctx context.Context, sub model.Submission, res novelty.Result) model.Review {
	if s.oracle == nil {
		return s.fallback(res.NoveltyScore)
	}

	prompt := fmt.Sprintf(reviewSystemPromptFmt,
		sub.Title, describeOr(sub.Description), res.NoveltyScore, res.ComparedCount, res.NoveltyScore)

	response, err := s.oracle.Infer(ctx, prompt, "Project: "+sub.Title)
	if err != nil {
		return s.fallback(res.NoveltyScore)
	}

	review, err := parseCritique(response, res.NoveltyScore)
	if err != nil {
		return s.fallback(res.NoveltyScore)
	}
	return review
}

// fallback is the deterministic review used when the oracle is unavailable
// or returns something unusable.
func (s *Synthesizer) fallback(noveltyScore int) model.Review {
	overall := int(math.Round(float64(noveltyScore+fallbackFeasibility+fallbackImpact) / 3))

	return model.Review{
		AgentLabel:       DefaultAgentLabel,
		OverallScore:     overall,
		NoveltyScore:     noveltyScore,
		FeasibilityScore: fallbackFeasibility,
		ImpactScore:      fallbackImpact,
		Reasoning: fmt.Sprintf("**Vector Analysis Complete.**\n\n"+
			"This project shows a novelty score of **%d/100**.\n"+
			"- **Feasibility:** The architecture appears standard but robust.\n"+
			"- **Impact:** High potential for niche markets.", noveltyScore),
	}
}

// critiquePayload is the shape the oracle is asked to produce. Numeric
// fields are pointers so a missing field is distinguishable from zero.
type critiquePayload struct {
	AgentName        string   `json:"agentName"`
	Score            *float64 `json:"score"`
	NoveltyScore     *float64 `json:"noveltyScore"`
	FeasibilityScore *float64 `json:"feasibilityScore"`
	ImpactScore      *float64 `json:"impactScore"`
	Reasoning        string   `json:"reasoning"`
}

// parseCritique validates oracle output. All four numeric fields must be
// present and in [0,100]; out-of-range values reject the whole response
// rather than being clamped, keeping the valid/malformed boundary sharp.
// The locally computed novelty score always overrides the oracle's.
func parseCritique(response string, localNovelty int) (model.Review, error) {
	raw := extractJSONObject(response)
	if raw == "" {
		return model.Review{}, fmt.Errorf("no JSON object in oracle response")
	}

	var payload critiquePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return model.Review{}, fmt.Errorf("parsing critique: %w", err)
	}

	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"score", payload.Score},
		{"noveltyScore", payload.NoveltyScore},
		{"feasibilityScore", payload.FeasibilityScore},
		{"impactScore", payload.ImpactScore},
	} {
		if f.value == nil {
			return model.Review{}, fmt.Errorf("%s: missing", f.name)
		}
		if *f.value < 0 || *f.value > 100 {
			return model.Review{}, fmt.Errorf("%s: %v out of range [0,100]", f.name, *f.value)
		}
	}

	if payload.Reasoning == "" {
		return model.Review{}, fmt.Errorf("reasoning: missing")
	}

	label := payload.AgentName
	if label == "" {
		label = DefaultAgentLabel
	}

	return model.Review{
		AgentLabel:       label,
		OverallScore:     int(math.Round(*payload.Score)),
		NoveltyScore:     localNovelty, // local computation is authoritative
		FeasibilityScore: int(math.Round(*payload.FeasibilityScore)),
		ImpactScore:      int(math.Round(*payload.ImpactScore)),
		Reasoning:        payload.Reasoning,
	}, nil
}

// extractJSONObject pulls the first braced object out of the response,
// tolerating surrounding prose or code fences.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func describeOr(description string) string {
	if strings.TrimSpace(description) == "" {
		return "No description provided."
	}
	return description
}
