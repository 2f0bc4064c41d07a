package model

// Config is the full engine configuration. Values come from (highest to
// lowest priority) CLI flags, ARBITER_* environment variables, the config
// file, and the defaults below.
type Config struct {
	Oracle      OracleConfig      `yaml:"oracle"`
	Store       StoreConfig       `yaml:"store"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// OracleConfig configures the external inference oracle.
type OracleConfig struct {
	// Provider name: "openai" (any OpenAI-compatible endpoint, including
	// Groq via BaseURL) or "" to disable and run on fallbacks only.
	Provider string `yaml:"provider"`

	// Model name, provider-specific.
	Model string `yaml:"model"`

	// APIKey for the provider. Prefer the OPENAI_API_KEY / GROQ_API_KEY
	// environment variables over putting this in a file.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (e.g. Groq's OpenAI-compatible
	// API).
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout for a single inference call, in seconds.
	Timeout int `yaml:"timeout"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for generation.
	Temperature float32 `yaml:"temperature"`
}

// StoreConfig configures the submission store.
type StoreConfig struct {
	// Path to the SQLite database file.
	Path string `yaml:"path"`
}

// CacheConfig configures oracle response caching.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes"`

	// Dir, when set, layers a persistent disk cache under the in-memory one.
	Dir string `yaml:"dir,omitempty"`
}

// ConcurrencyConfig bounds parallel oracle work.
type ConcurrencyConfig struct {
	// ReviewWorkers is the worker count for batch review runs.
	ReviewWorkers int `yaml:"review_workers"`

	// OracleRequestsPerSecond rate-limits calls to the oracle.
	OracleRequestsPerSecond float64 `yaml:"oracle_requests_per_second"`

	// OracleBurst is the rate limiter burst size.
	OracleBurst int `yaml:"oracle_burst"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults. The oracle is disabled by
// default; every generative component degrades to its documented fallback.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:    "",
			Model:       "llama-3.3-70b-versatile",
			Timeout:     30,
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Store: StoreConfig{
			Path: "arbiter.db",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 60,
		},
		Concurrency: ConcurrencyConfig{
			ReviewWorkers:           4,
			OracleRequestsPerSecond: 2,
			OracleBurst:             5,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
