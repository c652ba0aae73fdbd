package generation

import (
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// New builds the configured generator.
func New(cfg *config.GenerationConfig) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case config.ProviderOllama:
		g, err := NewOllamaGenerator(cfg.BaseURL, cfg.Model, timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderOpenAI:
		g, err := NewOpenAIGenerator(cfg.APIKey(), cfg.BaseURL, cfg.Model, timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderExtractive:
		return NewExtractiveGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", models.ErrConfig, cfg.Provider)
	}
}
