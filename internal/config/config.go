// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CorpusConfig describes which files are ingested at startup.
type CorpusConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Watch       bool     `yaml:"watch"`
}

// RecursiveOrDefault returns whether to walk subdirectories; defaults to true when unset.
func (c *CorpusConfig) RecursiveOrDefault() bool {
	if c.Recursive != nil {
		return *c.Recursive
	}
	return true
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider          string `yaml:"provider"`
	ModelPath         string `yaml:"model_path"`
	VocabPath         string `yaml:"vocab_path"`
	SharedLibraryPath string `yaml:"shared_library_path"`
	OutputName        string `yaml:"output_name"`
	Dimensions        int    `yaml:"dimensions"`
	MaxTokens         int    `yaml:"max_tokens"`
	CacheSize         int    `yaml:"cache_size"`
	Pooling           string `yaml:"pooling"`
	Normalize         *bool  `yaml:"normalize"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	APIKeyEnv         string `yaml:"api_key_env"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// NormalizeOrDefault returns whether vectors are L2-normalized; defaults to true when unset.
func (e *EmbeddingConfig) NormalizeOrDefault() bool {
	if e.Normalize != nil {
		return *e.Normalize
	}
	return true
}

// APIKey reads the key from the configured environment variable.
func (e *EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// GenerationConfig selects and configures the text generation backend.
type GenerationConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// APIKey reads the key from the configured environment variable.
func (g *GenerationConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}

// RetrievalConfig holds chunking and answer settings.
type RetrievalConfig struct {
	ChunkSize       int  `yaml:"chunk_size"`
	ChunkOverlap    *int `yaml:"chunk_overlap"`
	TopK            int  `yaml:"top_k"`
	MaxAnswerLength int  `yaml:"max_answer_length"`
}

// OverlapOrDefault returns the chunk overlap; an explicit 0 is kept.
func (r *RetrievalConfig) OverlapOrDefault() int {
	if r.ChunkOverlap != nil {
		return *r.ChunkOverlap
	}
	return DefaultChunkOverlap
}

// StorageConfig holds the journal database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	Disabled     bool   `yaml:"disabled"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	cfg.Embedding.SharedLibraryPath = expandPath(cfg.Embedding.SharedLibraryPath, configDir)
	for i := range cfg.Corpus.Directories {
		cfg.Corpus.Directories[i] = expandPath(cfg.Corpus.Directories[i], configDir)
	}

	return &cfg, nil
}

// Default returns the built-in configuration with relative paths resolved
// against the working directory. Used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, wd)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, wd)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, wd)
	for i := range cfg.Corpus.Directories {
		cfg.Corpus.Directories[i] = expandPath(cfg.Corpus.Directories[i], wd)
	}
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty stays empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
