package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/mkravets/arbiter/internal/model"
)

// mockOracle implements oracle.Oracle for testing.
type mockOracle struct {
	response string
	err      error
}

func (m *mockOracle) Name() string { return "mock" }

func (m *mockOracle) Infer(ctx context.Context, systemPrompt, userContent string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockOracle) IsAvailable(ctx context.Context) bool { return true }

func assertInRange(t *testing.T, v model.ConceptVector) {
	t.Helper()
	for i, x := range v {
		if x < 0 || x > 1 {
			t.Errorf("dimension %d: %v out of range [0,1]", i, x)
		}
	}
}

func TestEmbed_ValidOracleVector(t *testing.T) {
	g := NewGenerator(&mockOracle{response: `[0.8, 0.4, 0.9, 0.2, 0.5]`})

	v := g.Embed(context.Background(), "An AI-powered hackathon judge")

	want := model.ConceptVector{0.8, 0.4, 0.9, 0.2, 0.5}
	if v != want {
		t.Errorf("Expected %v, got %v", want, v)
	}
}

func TestEmbed_OracleVectorWithProse(t *testing.T) {
	g := NewGenerator(&mockOracle{response: "Here is the rating:\n[0.1, 0.2, 0.3, 0.4, 0.5]\nDone."})

	v := g.Embed(context.Background(), "text")

	want := model.ConceptVector{0.1, 0.2, 0.3, 0.4, 0.5}
	if v != want {
		t.Errorf("Expected %v, got %v", want, v)
	}
}

func TestEmbed_FallbackOnOracleError(t *testing.T) {
	g := NewGenerator(&mockOracle{err: errors.New("network down")})

	v := g.Embed(context.Background(), "text")
	assertInRange(t, v)
}

func TestEmbed_FallbackOnMalformedOutput(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not JSON", "I would rate this project highly."},
		{"wrong length", "[0.1, 0.2, 0.3]"},
		{"too long", "[0.1, 0.2, 0.3, 0.4, 0.5, 0.6]"},
		{"out of range", "[0.1, 0.2, 1.5, 0.4, 0.5]"},
		{"negative", "[-0.1, 0.2, 0.3, 0.4, 0.5]"},
		{"non-numeric", `["a", "b", "c", "d", "e"]`},
		{"object", `{"technical": 0.5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(&mockOracle{response: tc.response})
			v := g.Embed(context.Background(), "text")
			assertInRange(t, v)
		})
	}
}

func TestEmbed_NilOracle(t *testing.T) {
	g := NewGenerator(nil)

	v := g.Embed(context.Background(), "text")
	assertInRange(t, v)
}

func TestEmbed_FallbackIsNotConstant(t *testing.T) {
	draws := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	i := 0
	g := NewGenerator(nil)
	g.randFloat = func() float64 {
		x := draws[i%len(draws)]
		i++
		return x
	}

	v := g.Embed(context.Background(), "text")

	want := model.ConceptVector{0.1, 0.2, 0.3, 0.4, 0.5}
	if v != want {
		t.Errorf("Expected injected draws %v, got %v", want, v)
	}
}

func TestNormalizeText_PlainText(t *testing.T) {
	got := NormalizeText("  a   plain\n description ")
	if got != "a plain description" {
		t.Errorf("Expected collapsed text, got %q", got)
	}
}

func TestNormalizeText_StripsMarkup(t *testing.T) {
	in := `<div><h1>Title</h1><script>alert(1)</script><p>Body text</p></div>`
	got := NormalizeText(in)

	if got != "Title Body text" {
		t.Errorf("Expected visible text only, got %q", got)
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := model.ConceptVector{0.8, 0.4, 0.9, 0.2, 0.5}

	sim := v.CosineSimilarity(v)
	if sim < 0.9999999 || sim > 1.0000001 {
		t.Errorf("Expected self-similarity 1.0, got %v", sim)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	var zero model.ConceptVector
	v := model.ConceptVector{0.5, 0.5, 0.5, 0.5, 0.5}

	if sim := v.CosineSimilarity(zero); sim != 0 {
		t.Errorf("Expected 0 for zero-magnitude comparison, got %v", sim)
	}
}
