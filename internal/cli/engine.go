package cli

import (
	"fmt"
	"os"

	"github.com/mkravets/arbiter/internal/model"
	"github.com/mkravets/arbiter/internal/pipeline"
	"github.com/spf13/cobra"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

var (
	storePath   string
	noCache     bool
	cacheDir    string
	oracleName  string
	oracleModel string
)

// addEngineFlags registers the flags shared by every command that opens the
// scoring engine.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&storePath, "db", "arbiter.db", "path to the submission database")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable oracle response caching")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist oracle responses to this directory")
	cmd.Flags().StringVar(&oracleName, "oracle", "", "inference oracle (openai, groq, or empty for fallbacks only)")
	cmd.Flags().StringVar(&oracleModel, "oracle-model", "llama-3.3-70b-versatile", "oracle model name")
}

// buildConfig assembles engine configuration from defaults, environment,
// and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Store.Path = storePath
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Output.Verbose = verbose

	if oracleName != "" {
		cfg.Oracle.Provider = oracleName
		cfg.Oracle.Model = oracleModel

		switch oracleName {
		case "openai":
			cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.Oracle.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "groq":
			cfg.Oracle.APIKey = os.Getenv("GROQ_API_KEY")
			if cfg.Oracle.APIKey == "" {
				return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
			}
			cfg.Oracle.BaseURL = groqBaseURL
		}
	}

	return cfg, nil
}

// openEngine builds configuration and assembles the engine. Callers own the
// returned engine and must Close it.
func openEngine() (*pipeline.Engine, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return openEngineWith(cfg)
}

// openEngineWith assembles the engine from an already-built configuration.
func openEngineWith(cfg *model.Config) (*pipeline.Engine, error) {
	if verbose {
		if cfg.Oracle.Provider == "" {
			fmt.Fprintln(os.Stderr, "Oracle: disabled (deterministic fallbacks)")
		} else {
			fmt.Fprintf(os.Stderr, "Oracle: %s/%s\n", cfg.Oracle.Provider, cfg.Oracle.Model)
		}
		fmt.Fprintf(os.Stderr, "Store:  %s\n", cfg.Store.Path)
		fmt.Fprintln(os.Stderr)
	}

	return pipeline.NewEngine(cfg)
}
