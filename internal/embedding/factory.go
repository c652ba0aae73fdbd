package embedding

import (
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// OptionsFromConfig pins the embedding options used for both ingestion and queries.
func OptionsFromConfig(cfg *config.EmbeddingConfig) (Options, error) {
	opts := Options{Pooling: cfg.Pooling, Normalize: cfg.NormalizeOrDefault()}
	if opts.Pooling == "" {
		opts.Pooling = PoolingMean
	}
	return opts, opts.Validate()
}

// New builds the configured embedder, wrapped in an LRU cache when
// cache_size > 0. Unknown providers and missing model files are errors;
// there is no fallback to the mock embedder.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case config.ProviderONNX:
		var tok Tokenizer = &SimpleTokenizer{}
		if cfg.VocabPath != "" {
			wp, werr := LoadWordPiece(cfg.VocabPath)
			if werr != nil {
				return nil, werr
			}
			tok = wp
		}
		e, err = NewONNXEmbedder(ONNXConfig{
			ModelPath:         cfg.ModelPath,
			SharedLibraryPath: cfg.SharedLibraryPath,
			OutputName:        cfg.OutputName,
			Dimensions:        cfg.Dimensions,
			MaxTokens:         cfg.MaxTokens,
			Tokenizer:         tok,
		})
	case config.ProviderOpenAI:
		e, err = NewOpenAIEmbedder(cfg.APIKey(), cfg.BaseURL, cfg.Model, cfg.Dimensions, timeout)
	case config.ProviderOllama:
		e, err = NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions, timeout)
	case config.ProviderMock:
		e = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCachedEmbedder(e, cfg.CacheSize), nil
}
