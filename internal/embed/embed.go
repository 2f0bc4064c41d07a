// Package embed turns a project description into a fixed-length concept
// vector by asking the oracle to rate the text along five fixed semantic
// axes. Malformed or unavailable oracle output degrades to a random
// "no-signal" vector so downstream novelty comparisons stay well-defined.
package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/oracle"
)

const embedSystemPrompt = `You rate project descriptions along five fixed dimensions.
Analyze the project description and output a JSON array of exactly 5 numbers between 0.0 and 1.0 representing:
1. Technical Complexity
2. Business Viability
3. Conceptual Novelty
4. User Focus
5. Scalability

Output ONLY the JSON array. Example: [0.8, 0.4, 0.9, 0.2, 0.5]`

// Generator produces concept vectors for submission text.
type Generator struct {
	oracle oracle.Oracle // nil when disabled

	// randFloat is the uniform draw used for fallback vectors (injectable
	// for tests).
	randFloat func() float64
}

// NewGenerator creates a generator backed by the given oracle. A nil oracle
// means every embedding is a fallback vector.
func NewGenerator(o oracle.Oracle) *Generator {
	return &Generator{
		oracle:    o,
		randFloat: rand.Float64,
	}
}

// Embed returns the concept vector for text. Never fails: oracle errors and
// malformed output both degrade to a random vector with every element in
// [0,1).
func (g *Generator) Embed(ctx context.Context, text string) model.ConceptVector {
	normalized := NormalizeText(text)

	if g.oracle != nil {
		response, err := g.oracle.Infer(ctx, embedSystemPrompt, fmt.Sprintf("Description: %q", normalized))
		if err == nil {
			if v, err := parseVector(response); err == nil {
				return v
			}
		}
	}

	return g.fallbackVector()
}

// fallbackVector returns five independent uniform draws. An explicit
// unknown/no-signal vector, not a deterministic placeholder: novelty
// comparisons against it remain defined but uninformative.
func (g *Generator) fallbackVector() model.ConceptVector {
	var v model.ConceptVector
	for i := range v {
		v[i] = g.randFloat()
	}
	return v
}

// parseVector validates oracle output against the required shape: a JSON
// array of exactly 5 numbers, each in [0,1]. Anything else is rejected.
func parseVector(response string) (model.ConceptVector, error) {
	var zero model.ConceptVector

	raw := extractJSONArray(response)
	if raw == "" {
		return zero, fmt.Errorf("no JSON array in oracle response")
	}

	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return zero, fmt.Errorf("parsing vector: %w", err)
	}

	if len(values) != model.VectorDims {
		return zero, fmt.Errorf("expected %d dimensions, got %d", model.VectorDims, len(values))
	}

	var v model.ConceptVector
	copy(v[:], values)

	if err := v.Validate(); err != nil {
		return zero, fmt.Errorf("validating vector: %w", err)
	}

	return v, nil
}

// extractJSONArray pulls the first bracketed array out of the response,
// tolerating surrounding prose or code fences.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
