package config

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Similarity backends.
const (
	BackendLexical   = "lexical"
	BackendEmbedding = "embedding"
	BackendNone      = "none"
)

// AIConfig stores provider defaults.
type AIConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	MaxRetries   int    `yaml:"max_retries,omitempty"`
	RetryDelayMs int    `yaml:"retry_delay_ms,omitempty"`
	TimeoutSec   int    `yaml:"timeout_sec,omitempty"`
}

// SimilarityConfig selects the nearest-template backend and its cache.
type SimilarityConfig struct {
	Backend     string `yaml:"backend"`
	EmbedModel  string `yaml:"embed_model,omitempty"`
	TimeoutMs   int    `yaml:"timeout_ms,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	CacheTTLSec int    `yaml:"cache_ttl_sec,omitempty"`
}

// AnalysisConfig bounds input and remediation.
type AnalysisConfig struct {
	MinChars    int  `yaml:"min_chars"`
	MaxChars    int  `yaml:"max_chars"`
	MaxFixes    int  `yaml:"max_fixes"`
	Remediation bool `yaml:"remediation"`
}

// Config is the content of .riskgate/riskgate.yaml.
type Config struct {
	AI         AIConfig         `yaml:"ai"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	limits := document.DefaultLimits()
	return &Config{
		AI: AIConfig{
			Provider:     "ollama",
			Model:        "llama3",
			MaxRetries:   2,
			RetryDelayMs: 1000,
			TimeoutSec:   120,
		},
		Similarity: SimilarityConfig{
			Backend:     BackendLexical,
			EmbedModel:  "nomic-embed-text",
			TimeoutMs:   3000,
			MaxAttempts: 2,
			CacheTTLSec: 3600,
		},
		Analysis: AnalysisConfig{
			MinChars:    limits.MinChars,
			MaxChars:    limits.MaxChars,
			MaxFixes:    5,
			Remediation: true,
		},
	}
}

// Limits returns the input limits in document form.
func (c *Config) Limits() document.Limits {
	return document.Limits{MinChars: c.Analysis.MinChars, MaxChars: c.Analysis.MaxChars}
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch c.Similarity.Backend {
	case BackendLexical, BackendEmbedding, BackendNone:
	default:
		return fmt.Errorf("unknown similarity backend %q (want lexical, embedding or none)", c.Similarity.Backend)
	}
	if c.Analysis.MinChars < 0 || c.Analysis.MaxChars < 0 {
		return fmt.Errorf("analysis limits must not be negative")
	}
	if c.Analysis.MaxChars > 0 && c.Analysis.MinChars > c.Analysis.MaxChars {
		return fmt.Errorf("min_chars %d exceeds max_chars %d", c.Analysis.MinChars, c.Analysis.MaxChars)
	}
	return nil
}

// Load reads riskgate.yaml from the workspace under root. Fields the file
// leaves out keep their defaults; a missing file yields Default().
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", storage.ConfigFile, err)
	}
	return cfg, nil
}

func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
