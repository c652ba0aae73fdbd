package keyword

import (
	"context"
	"testing"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	err = idx.Add(context.Background(), []Entry{
		{DocumentID: "doc:lease", Title: "contracts/lease.txt", Position: 0, Text: "The tenant shall pay rent monthly to the landlord."},
		{DocumentID: "doc:lease", Title: "contracts/lease.txt", Position: 1, Text: "The landlord must repair structural defects."},
		{DocumentID: "doc:tort", Title: "notes/negligence.md", Position: 0, Text: "Negligence requires duty, breach, causation and damage."},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return idx
}

func TestBleveIndex_SearchReturnsStoredFields(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "negligence", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ID != "doc:tort#0" || r.DocumentID != "doc:tort" || r.Title != "notes/negligence.md" || r.Position != 0 {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Text != "Negligence requires duty, breach, causation and damage." {
		t.Errorf("text = %q", r.Text)
	}
	if r.Score <= 0 {
		t.Errorf("score = %v", r.Score)
	}
}

func TestBleveIndex_SearchMultipleChunks(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "landlord", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.DocumentID != "doc:lease" {
			t.Errorf("unexpected document %s", r.DocumentID)
		}
	}
	limited, _ := idx.Search(context.Background(), "landlord", 1, nil)
	if len(limited) != 1 {
		t.Errorf("limit not applied: %d", len(limited))
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newTestIndex(t)
	exact, _ := idx.Search(context.Background(), "neglgence", 10, nil)
	if len(exact) != 0 {
		t.Fatalf("misspelling should not match without fuzzy, got %d", len(exact))
	}
	fuzzy, err := idx.Search(context.Background(), "neglgence", 10, &SearchOptions{Fuzzy: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(fuzzy) == 0 || fuzzy[0].DocumentID != "doc:tort" {
		t.Errorf("fuzzy search should find the negligence chunk, got %+v", fuzzy)
	}
}

func TestBleveIndex_TitleBoost(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "contracts", 10, &SearchOptions{TitleBoost: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("title match should surface both lease chunks, got %d", len(results))
	}
	plain, _ := idx.Search(context.Background(), "contracts", 10, nil)
	if len(plain) != 0 {
		t.Errorf("without title boost only chunk text is searched, got %d", len(plain))
	}
}

func TestBleveIndex_EmptyQueryAndCount(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "   ", 10, nil)
	if err != nil || len(results) != 0 {
		t.Errorf("blank query: %v, %v", results, err)
	}
	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("DocCount = %d, want 3", n)
	}
	if err := idx.Add(context.Background(), nil); err != nil {
		t.Errorf("empty Add: %v", err)
	}
}
