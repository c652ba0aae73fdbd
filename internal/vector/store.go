// Package vector holds the in-memory chunk store and cosine similarity ranking.
package vector

import (
	"fmt"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// Store is an append-only, insertion-ordered list of embedded chunks.
// Every embedding in a store has the same dimensionality: fixed at
// construction, or adopted from the first appended chunk when zero.
type Store struct {
	dimensions int
	chunks     []models.Chunk
	mu         sync.RWMutex
}

// NewStore creates an empty store. dimensions <= 0 means "adopt from first append".
func NewStore(dimensions int) *Store {
	if dimensions < 0 {
		dimensions = 0
	}
	return &Store{
		dimensions: dimensions,
		chunks:     make([]models.Chunk, 0),
	}
}

// Append adds a chunk at the end of the store. The embedding is copied, so the
// caller may reuse its slice.
func (s *Store) Append(chunk models.Chunk) error {
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", models.ErrDimensionMismatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions == 0 {
		s.dimensions = len(chunk.Embedding)
	}
	if len(chunk.Embedding) != s.dimensions {
		return fmt.Errorf("%w: chunk %d has %d dimensions, store expects %d",
			models.ErrDimensionMismatch, len(s.chunks), len(chunk.Embedding), s.dimensions)
	}
	vec := make([]float32, len(chunk.Embedding))
	copy(vec, chunk.Embedding)
	s.chunks = append(s.chunks, models.Chunk{Text: chunk.Text, Embedding: vec})
	return nil
}

// All returns the chunks in insertion order. The returned slice is capped so
// appends by the caller cannot write into the store's backing array; callers
// must not modify the embeddings.
func (s *Store) All() []models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[:len(s.chunks):len(s.chunks)]
}

// Len returns the number of chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimensions returns the embedding width, or 0 if not yet known.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}
