package vector

import (
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func BenchmarkRank(b *testing.B) {
	const dims = 384
	chunks := make([]models.Chunk, 1000)
	for i := range chunks {
		v := make([]float32, dims)
		v[0] = float32(i) / 1000
		v[i%dims] += 1
		chunks[i] = models.Chunk{Text: "chunk", Embedding: v}
	}
	query := make([]float32, dims)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Rank(query, chunks, 5)
	}
}
