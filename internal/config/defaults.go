package config

import (
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

// Retrieval defaults.
const (
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 100
	DefaultTopK            = 5
	DefaultMaxAnswerLength = 150
)

// Backend names accepted by embedding.provider and generation.provider.
const (
	ProviderONNX       = "onnx"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderMock       = "mock"
	ProviderExtractive = "extractive"
)

// DefaultExtensions are the corpus file types ingested when none are configured.
var DefaultExtensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".pptx", ".odp", ".ods"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 120
	}
	if len(cfg.Corpus.Directories) == 0 {
		cfg.Corpus.Directories = []string{"./legal-docs"}
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = append([]string(nil), DefaultExtensions...)
	}
	// Recursive defaults to true when unset (nil).
	if cfg.Corpus.Recursive == nil {
		t := true
		cfg.Corpus.Recursive = &t
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderONNX
	}
	if cfg.Embedding.Provider == ProviderONNX {
		if cfg.Embedding.ModelPath == "" {
			cfg.Embedding.ModelPath = "./models/all-MiniLM-L6-v2.onnx"
		}
		if cfg.Embedding.VocabPath == "" {
			cfg.Embedding.VocabPath = "./models/vocab.txt"
		}
		if cfg.Embedding.OutputName == "" {
			cfg.Embedding.OutputName = "last_hidden_state"
		}
	}
	if cfg.Embedding.Provider == ProviderOpenAI {
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = "text-embedding-3-small"
		}
		if cfg.Embedding.APIKeyEnv == "" {
			cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Embedding.Provider == ProviderOllama {
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = "nomic-embed-text"
		}
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = "http://localhost:11434"
		}
	}
	if cfg.Embedding.Dimensions == 0 && cfg.Embedding.Provider != ProviderOpenAI && cfg.Embedding.Provider != ProviderOllama {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Pooling == "" {
		cfg.Embedding.Pooling = "mean"
	}
	if cfg.Embedding.Normalize == nil {
		t := true
		cfg.Embedding.Normalize = &t
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderOllama
	}
	switch cfg.Generation.Provider {
	case ProviderOllama:
		if cfg.Generation.Model == "" {
			cfg.Generation.Model = "llama3.2"
		}
		if cfg.Generation.BaseURL == "" {
			cfg.Generation.BaseURL = "http://localhost:11434"
		}
	case ProviderOpenAI:
		if cfg.Generation.Model == "" {
			cfg.Generation.Model = "gpt-4o-mini"
		}
		if cfg.Generation.APIKeyEnv == "" {
			cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}

	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = DefaultChunkSize
	}
	if cfg.Retrieval.ChunkOverlap == nil {
		o := DefaultChunkOverlap
		cfg.Retrieval.ChunkOverlap = &o
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Retrieval.MaxAnswerLength == 0 {
		cfg.Retrieval.MaxAnswerLength = DefaultMaxAnswerLength
	}

	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/kotae.db"
	}
}

// Validate reports the first setting that cannot work. Errors wrap models.ErrConfig.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", models.ErrConfig, cfg.Server.Port)
	}
	if len(cfg.Corpus.Directories) == 0 {
		return fmt.Errorf("%w: corpus.directories is empty", models.ErrConfig)
	}

	switch cfg.Embedding.Provider {
	case ProviderONNX:
		if cfg.Embedding.ModelPath == "" {
			return fmt.Errorf("%w: embedding.model_path is required for the onnx provider", models.ErrConfig)
		}
		if cfg.Embedding.Dimensions <= 0 {
			return fmt.Errorf("%w: embedding.dimensions must be positive for the onnx provider", models.ErrConfig)
		}
	case ProviderOpenAI, ProviderOllama, ProviderMock:
	default:
		return fmt.Errorf("%w: unknown embedding.provider %q", models.ErrConfig, cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions < 0 {
		return fmt.Errorf("%w: embedding.dimensions must not be negative", models.ErrConfig)
	}
	if cfg.Embedding.Pooling != "mean" && cfg.Embedding.Pooling != "cls" {
		return fmt.Errorf("%w: embedding.pooling must be mean or cls, got %q", models.ErrConfig, cfg.Embedding.Pooling)
	}

	switch cfg.Generation.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderExtractive:
	default:
		return fmt.Errorf("%w: unknown generation.provider %q", models.ErrConfig, cfg.Generation.Provider)
	}
	if cfg.Generation.Model == "" && cfg.Generation.Provider != ProviderExtractive {
		return fmt.Errorf("%w: generation.model is required", models.ErrConfig)
	}

	r := cfg.Retrieval
	overlap := r.OverlapOrDefault()
	if r.ChunkSize <= 0 || overlap < 0 || overlap >= r.ChunkSize {
		return fmt.Errorf("%w: retrieval.chunk_overlap must be in [0, chunk_size), got overlap %d with chunk_size %d",
			models.ErrConfig, overlap, r.ChunkSize)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", models.ErrConfig)
	}
	if r.MaxAnswerLength <= 0 {
		return fmt.Errorf("%w: retrieval.max_answer_length must be positive", models.ErrConfig)
	}
	return nil
}
