package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// OllamaEmbedder calls a local Ollama server's /api/embeddings endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions atomic.Int64
	client     *http.Client
}

// NewOllamaEmbedder creates an embedder for model served at baseURL.
func NewOllamaEmbedder(baseURL, model string, dimensions int, timeout time.Duration) (*OllamaEmbedder, error) {
	if baseURL == "" || model == "" {
		return nil, fmt.Errorf("%w: ollama embedder needs base_url and model", models.ErrConfig)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	e := &OllamaEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
	if dimensions > 0 {
		e.dimensions.Store(int64(dimensions))
	}
	return e, nil
}

// Embed requests one embedding and applies normalization per opts.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, opts Options) ([]float32, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Pooling != PoolingMean {
		return nil, fmt.Errorf("%w: ollama embeddings only support %s pooling", models.ErrConfig, PoolingMean)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"model":  e.model,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: %s", resp.Status)
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	v := make([]float32, len(result.Embedding))
	for i, x := range result.Embedding {
		v[i] = float32(x)
	}
	e.dimensions.CompareAndSwap(0, int64(len(v)))
	return finish(v, opts), nil
}

// Dimensions returns the configured width, or the width seen so far.
func (e *OllamaEmbedder) Dimensions() int {
	return int(e.dimensions.Load())
}

// Close is a no-op.
func (e *OllamaEmbedder) Close() error {
	return nil
}
