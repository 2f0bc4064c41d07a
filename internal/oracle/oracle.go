// Package oracle wraps the external language-model inference service. The
// service has no availability guarantee: every caller must validate the
// returned text against its expected JSON shape and degrade to a local
// fallback when Infer fails.
package oracle

import (
	"context"
)

// Oracle is the single entry point to the inference service.
type Oracle interface {
	// Name returns the provider name.
	Name() string

	// Infer sends a system prompt and user content to the model and returns
	// the raw response text. Any failure (no API key, network error, non-2xx,
	// empty completion) surfaces as an error; callers treat all errors the
	// same way and fall back.
	Infer(ctx context.Context, systemPrompt, userContent string) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Config holds oracle provider configuration.
type Config struct {
	// Provider name: "openai" (covers any OpenAI-compatible endpoint,
	// including Groq via BaseURL) or "" for disabled.
	Provider string

	// Model name, provider-specific.
	Model string

	// APIKey for the provider.
	APIKey string

	// BaseURL for custom endpoints.
	BaseURL string

	// Timeout for a single call, in seconds.
	Timeout int

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature for generation.
	Temperature float32
}

// DefaultConfig returns sensible defaults with the oracle disabled.
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Model:       "llama-3.3-70b-versatile",
		Timeout:     30,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
}
