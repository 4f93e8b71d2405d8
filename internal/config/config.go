// Package config loads and persists the CLI configuration.
// Configuration lives in a TOML file at ~/.insight/config.toml; the OpenAI
// API key can also be supplied via the INSIGHT_OPENAI_API_KEY or
// OPENAI_API_KEY environment variables, which take precedence over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration.
type Config struct {
	OpenAI    OpenAIConfig    `toml:"openai"`
	Storage   StorageConfig   `toml:"storage"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Retry     RetryConfig     `toml:"retry"`
}

// OpenAIConfig holds credentials and model selection for the OpenAI API.
type OpenAIConfig struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	EmbeddingModel  string `toml:"embedding_model"`
	CompletionModel string `toml:"completion_model"`
}

// StorageConfig holds chunk store settings.
type StorageConfig struct {
	// DataDir is the directory holding the SQLite database.
	// Empty means ~/.insight/data.
	DataDir string `toml:"data_dir"`
}

// RetrievalConfig holds query tuning parameters.
type RetrievalConfig struct {
	PrimaryThreshold  float64 `toml:"primary_threshold"`
	FallbackThreshold float64 `toml:"fallback_threshold"`
	Limit             int     `toml:"limit"`
	ChunkSize         int     `toml:"chunk_size"`
}

// RateLimitConfig bounds the embedding request rate.
type RateLimitConfig struct {
	// MinIntervalMs is the minimum spacing between embedding requests in
	// milliseconds, shared across the whole process.
	MinIntervalMs int `toml:"min_interval_ms"`
}

// RetryConfig bounds retries against the embedding service.
type RetryConfig struct {
	MaxAttempts      int `toml:"max_attempts"`
	InitialBackoffMs int `toml:"initial_backoff_ms"`
}

// Default returns a config populated with defaults.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			EmbeddingModel:  "text-embedding-3-small",
			CompletionModel: "gpt-4o-mini",
		},
		Retrieval: RetrievalConfig{
			PrimaryThreshold:  0.5,
			FallbackThreshold: 0.3,
			Limit:             5,
			ChunkSize:         1000,
		},
		RateLimit: RateLimitConfig{
			MinIntervalMs: 100,
		},
		Retry: RetryConfig{
			MaxAttempts:      3,
			InitialBackoffMs: 1000,
		},
	}
}

// Dir returns the configuration directory, ~/.insight.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".insight"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, applies defaults for missing fields and
// environment overrides for the API key. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file yet: defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if key := os.Getenv("INSIGHT_OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path, creating the directory with
// restrictive permissions. The file holds the API key, hence 0600.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.Retrieval.PrimaryThreshold < 0 || c.Retrieval.PrimaryThreshold > 1 {
		return fmt.Errorf("retrieval.primary_threshold must be in [0,1], got %v", c.Retrieval.PrimaryThreshold)
	}
	if c.Retrieval.FallbackThreshold < 0 || c.Retrieval.FallbackThreshold > 1 {
		return fmt.Errorf("retrieval.fallback_threshold must be in [0,1], got %v", c.Retrieval.FallbackThreshold)
	}
	if c.Retrieval.FallbackThreshold > c.Retrieval.PrimaryThreshold {
		return fmt.Errorf("retrieval.fallback_threshold must not exceed primary_threshold")
	}
	if c.Retrieval.Limit < 1 {
		return fmt.Errorf("retrieval.limit must be at least 1, got %d", c.Retrieval.Limit)
	}
	if c.Retrieval.ChunkSize < 1 {
		return fmt.Errorf("retrieval.chunk_size must be at least 1, got %d", c.Retrieval.ChunkSize)
	}
	if c.RateLimit.MinIntervalMs < 0 {
		return fmt.Errorf("ratelimit.min_interval_ms must not be negative, got %d", c.RateLimit.MinIntervalMs)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialBackoffMs < 0 {
		return fmt.Errorf("retry.initial_backoff_ms must not be negative, got %d", c.Retry.InitialBackoffMs)
	}
	return nil
}

// MinInterval returns the embedding rate limit spacing as a duration.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.RateLimit.MinIntervalMs) * time.Millisecond
}

// InitialBackoff returns the first retry delay as a duration.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.Retry.InitialBackoffMs) * time.Millisecond
}

// HasAPIKey reports whether an OpenAI API key is configured.
func (c *Config) HasAPIKey() bool {
	return c.OpenAI.APIKey != ""
}
