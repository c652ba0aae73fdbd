package embedding

import (
	"context"
	"testing"
)

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := NewMockEmbedder(384)
	ctx := context.Background()
	opts := DefaultOptions()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding", opts)
	}
}
