// Package config loads the application configuration from
// .liuren/config.yaml with defaults that work out of the box and environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig configures the chat-completions client used by extraction and
// explanation.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the client timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmbeddingConfig configures the optional embedding engine for snippet
// reranking. An empty API key disables reranking.
type EmbeddingConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// PipelineConfig bounds the coordinator's stages.
type PipelineConfig struct {
	ComputeTimeoutSeconds int `yaml:"compute_timeout_seconds"`
	EnrichTimeoutSeconds  int `yaml:"enrich_timeout_seconds"`
	MaxComputeWorkers     int `yaml:"max_compute_workers"`
	RetrievalTopK         int `yaml:"retrieval_top_k"`
}

// ComputeTimeout returns the hard computation stage timeout.
func (c PipelineConfig) ComputeTimeout() time.Duration {
	return time.Duration(c.ComputeTimeoutSeconds) * time.Second
}

// EnrichTimeout returns the enrichment stage timeout.
func (c PipelineConfig) EnrichTimeout() time.Duration {
	return time.Duration(c.EnrichTimeoutSeconds) * time.Second
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig mirrors the logging section read by internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		LLM:       DefaultLLMConfig(),
		Embedding: DefaultEmbeddingConfig(),
		Pipeline:  DefaultPipelineConfig(),
		Store:     DefaultStoreConfig(),
		Logging:   LoggingConfig{Level: "info"},
	}
}

// DefaultLLMConfig returns sensible LLM defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:        "https://api.deepseek.com/v1",
		Model:          "deepseek-chat",
		TimeoutSeconds: 30,
	}
}

// DefaultEmbeddingConfig returns embedding defaults.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{Model: "gemini-embedding-001"}
}

// DefaultPipelineConfig returns stage bounds matching the coordinator's
// contract: 10s fatal computation timeout, 3s enrichment timeout.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ComputeTimeoutSeconds: 10,
		EnrichTimeoutSeconds:  3,
		MaxComputeWorkers:     4,
		RetrievalTopK:         3,
	}
}

// DefaultStoreConfig returns the database location.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{Path: filepath.Join(".liuren", "liuren.db")}
}

// Load reads the config at path, merging file values over defaults and
// environment overrides over both. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromWorkspace loads .liuren/config.yaml under the workspace directory.
func LoadFromWorkspace(workspace string) (Config, error) {
	return Load(filepath.Join(workspace, ".liuren", "config.yaml"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIUREN_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LIUREN_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LIUREN_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("LIUREN_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
}

// Validate rejects configurations the coordinator cannot run with.
func (c Config) Validate() error {
	if c.Pipeline.ComputeTimeoutSeconds <= 0 {
		return fmt.Errorf("config: compute timeout must be positive")
	}
	if c.Pipeline.EnrichTimeoutSeconds <= 0 {
		return fmt.Errorf("config: enrich timeout must be positive")
	}
	if c.Pipeline.MaxComputeWorkers <= 0 {
		return fmt.Errorf("config: max compute workers must be positive")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store path required")
	}
	return nil
}
