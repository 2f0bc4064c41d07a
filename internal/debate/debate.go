// Package debate simulates a multi-perspective panel discussion over a
// submission. Output is presentational, regenerated on every request, and a
// fresh call may legitimately disagree with a prior one.
package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/oracle"
)

const (
	minTurns = 4
	maxTurns = 6
)

const debateSystemPrompt = `You are a Multi-Agent Debate System. Simulate a conversation between 3 AI judges:
- Visionary: Optimistic, focuses on big picture and potential.
- Skeptic: Critical, focuses on flaws and missing details.
- Architect: Technical, focuses on scalability and implementation.

Output a JSON array of objects with format: { "speaker": "Visionary"|"Skeptic"|"Architect", "content": string, "sentiment": "positive"|"negative"|"neutral" }.
Generate 4-6 turns of debate about the following project. Output ONLY the JSON array.`

// cannedScript is the fallback debate: six turns cycling through the three
// personas twice, covering an optimistic, a critical, and a technical pass.
var cannedScript = []model.DebateTurn{
	{Speaker: model.SpeakerVisionary, Sentiment: model.SentimentPositive,
		Content: "This idea fundamentally shifts the paradigm of user interaction. The novelty score is off the charts."},
	{Speaker: model.SpeakerSkeptic, Sentiment: model.SentimentNegative,
		Content: "Novelty is useless without utility. The implementation details are vague. How does it handle edge cases?"},
	{Speaker: model.SpeakerArchitect, Sentiment: model.SentimentNegative,
		Content: "The scalability is concerning. Relying on a single model endpoint introduces a massive bottleneck."},
	{Speaker: model.SpeakerVisionary, Sentiment: model.SentimentPositive,
		Content: "But think of the potential! If they solve the latency issue, this is a unicorn product."},
	{Speaker: model.SpeakerSkeptic, Sentiment: model.SentimentNeutral,
		Content: "Big 'if'. I need to see concrete performance benchmarks before I'm convinced."},
	{Speaker: model.SpeakerArchitect, Sentiment: model.SentimentNeutral,
		Content: "Agreed. They should implement a caching layer and use edge functions. Then it might work."},
}

// Simulator generates debates over submission descriptions.
type Simulator struct {
	oracle oracle.Oracle // nil when disabled
}

// NewSimulator creates a simulator. A nil oracle yields the canned script
// on every call.
func NewSimulator(o oracle.Oracle) *Simulator {
	return &Simulator{oracle: o}
}

// Generate returns a 4-6 turn debate about the description. Never fails:
// oracle trouble or malformed output yields the canned six-turn script.
func (s *Simulator) Generate(ctx context.Context, description string) []model.DebateTurn {
	if s.oracle == nil {
		return fallbackScript()
	}

	response, err := s.oracle.Infer(ctx, debateSystemPrompt, "Project: "+description)
	if err != nil {
		return fallbackScript()
	}

	turns, err := parseTurns(response)
	if err != nil {
		return fallbackScript()
	}
	return turns
}

// parseTurns validates oracle output: a non-empty JSON array of 4-6 turns,
// each with a known speaker, a known sentiment, and content. Any deviation
// rejects the whole response.
func parseTurns(response string) ([]model.DebateTurn, error) {
	raw := extractJSONArray(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in oracle response")
	}

	var turns []model.DebateTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("parsing debate: %w", err)
	}

	if len(turns) < minTurns || len(turns) > maxTurns {
		return nil, fmt.Errorf("expected %d-%d turns, got %d", minTurns, maxTurns, len(turns))
	}

	for i, turn := range turns {
		if err := turn.Validate(); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
	}

	return turns, nil
}

// fallbackScript returns a copy of the canned script so callers cannot
// mutate the shared original.
func fallbackScript() []model.DebateTurn {
	out := make([]model.DebateTurn, len(cannedScript))
	copy(out, cannedScript)
	return out
}

func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
