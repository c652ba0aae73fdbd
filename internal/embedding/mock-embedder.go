package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/kotae/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. Each
// word gets a fixed pseudo-random vector derived from its hash; the text
// vector is the mean (or first word, for CLS pooling) of its word vectors.
// Texts that share words therefore land close together.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic embedding for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string, opts Options) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	words := SplitWords(text)
	if len(words) == 0 {
		return make([]float32, e.dimensions), nil
	}
	hidden := make([]float32, 0, len(words)*e.dimensions)
	for _, w := range words {
		hidden = append(hidden, e.wordVector(w)...)
	}
	var pooled []float32
	if opts.Pooling == PoolingCLS {
		pooled = utils.FirstRow(hidden, e.dimensions)
	} else {
		pooled = utils.MeanPool(hidden, nil, len(words), e.dimensions)
	}
	return finish(pooled, opts), nil
}

func (e *MockEmbedder) wordVector(word string) []float32 {
	h := HashString(word)
	v := make([]float32, e.dimensions)
	for i := range v {
		v[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	return v
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
