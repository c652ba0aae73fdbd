package embedding

import (
	"context"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestEmbeddingCache_GetRefreshesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a")
	c.Set("c", []float32{3}) // evicts b, not a
	if _, ok := c.Get("a"); !ok {
		t.Error("recently read entry should survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

type countingEmbedder struct {
	*MockEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, opts Options) ([]float32, error) {
	c.calls++
	return c.MockEmbedder.Embed(ctx, text, opts)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	e := NewCachedEmbedder(inner, 16)
	ctx := context.Background()
	opts := DefaultOptions()

	first, err := e.Embed(ctx, "statute of limitations", opts)
	if err != nil {
		t.Fatal(err)
	}
	first[0] = 42 // caller mutation must not poison the cache
	second, err := e.Embed(ctx, "statute of limitations", opts)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if second[0] == 42 {
		t.Error("cached vector was mutated through a returned slice")
	}

	if _, err := e.Embed(ctx, "statute of limitations", Options{Pooling: PoolingCLS, Normalize: true}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("different options must miss the cache, calls=%d", inner.calls)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestNewCachedEmbedder_ZeroCapacity(t *testing.T) {
	inner := NewMockEmbedder(4)
	if got := NewCachedEmbedder(inner, 0); got != Embedder(inner) {
		t.Error("capacity 0 should return the inner embedder")
	}
}
