package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Pooling
// happens server-side, so only mean pooling (the model's native output) is
// accepted.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions atomic.Int64
}

// NewOpenAIEmbedder creates an embedder for model. baseURL may be empty for
// the public API. dimensions <= 0 means "learn from the first response".
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions int, timeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai embedder needs an API key", models.ErrConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: openai embedder needs a model", models.ErrConfig)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	e := &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
	if dimensions > 0 {
		e.dimensions.Store(int64(dimensions))
	}
	return e, nil
}

// Embed requests one embedding and applies normalization per opts.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string, opts Options) ([]float32, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Pooling != PoolingMean {
		return nil, fmt.Errorf("%w: openai embeddings only support %s pooling", models.ErrConfig, PoolingMean)
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: no data returned")
	}
	raw := resp.Data[0].Embedding
	v := make([]float32, len(raw))
	for i := range raw {
		v[i] = float32(raw[i])
	}
	e.dimensions.CompareAndSwap(0, int64(len(v)))
	return finish(v, opts), nil
}

// Dimensions returns the configured width, or the width seen so far.
func (e *OpenAIEmbedder) Dimensions() int {
	return int(e.dimensions.Load())
}

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
