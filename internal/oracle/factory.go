package oracle

import (
	"fmt"
	"strings"

	"github.com/mkravets/arbiter/internal/model"
)

// New creates an oracle based on configuration. Returns (nil, nil) when no
// provider is configured; callers treat a nil oracle as permanently
// unavailable and run on fallbacks.
func New(config Config) (Oracle, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "groq":
		return NewOpenAIOracle(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, groq)", config.Provider)
	}
}

// ConfigFromModel converts model.OracleConfig to oracle.Config.
func ConfigFromModel(mc model.OracleConfig) Config {
	return Config{
		Provider:    mc.Provider,
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Timeout:     mc.Timeout,
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
	}
}
