package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/kotae/internal/models"
)

// Rank scores every chunk against query and returns the k most similar,
// highest first. Ties keep insertion order; NaN scores sort below every
// real score. k <= 0 yields an empty result; k larger than len(chunks)
// yields all chunks.
func Rank(query []float32, chunks []models.Chunk, k int) ([]models.RankedResult, error) {
	for i, c := range chunks {
		if len(c.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: query has %d dimensions, chunk %d has %d",
				models.ErrDimensionMismatch, len(query), i, len(c.Embedding))
		}
	}
	if k <= 0 || len(chunks) == 0 {
		return []models.RankedResult{}, nil
	}

	scored := make([]models.RankedResult, len(chunks))
	for i, c := range chunks {
		scored[i] = models.RankedResult{Text: c.Text, Similarity: CosineSimilarity(query, c.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return higher(scored[i].Similarity, scored[j].Similarity)
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k:k], nil
}

// higher reports whether a ranks strictly above b, treating NaN as lowest.
func higher(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
