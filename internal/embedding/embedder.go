// Package embedding turns text into fixed-width vectors via ONNX, OpenAI-compatible
// or Ollama backends, with an LRU cache and a deterministic mock for tests.
package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Pooling strategies for collapsing per-token vectors into one.
const (
	PoolingMean = "mean"
	PoolingCLS  = "cls"
)

// Options are the embedding parameters shared by ingestion and queries.
// They are pinned once at startup; embedding a query with different options
// than the corpus silently degrades ranking.
type Options struct {
	Pooling   string
	Normalize bool
}

// DefaultOptions returns mean pooling with L2 normalization.
func DefaultOptions() Options {
	return Options{Pooling: PoolingMean, Normalize: true}
}

// Validate checks the pooling strategy.
func (o Options) Validate() error {
	switch o.Pooling {
	case PoolingMean, PoolingCLS:
		return nil
	default:
		return fmt.Errorf("%w: unknown pooling %q (want %q or %q)", models.ErrConfig, o.Pooling, PoolingMean, PoolingCLS)
	}
}

func (o Options) String() string {
	return fmt.Sprintf("pooling=%s normalize=%t", o.Pooling, o.Normalize)
}

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string, opts Options) ([]float32, error)
	Dimensions() int
	Close() error
}

// finish applies the normalization half of opts to a pooled vector.
func finish(vec []float32, opts Options) []float32 {
	if opts.Normalize {
		utils.NormalizeL2(vec)
	}
	return vec
}
