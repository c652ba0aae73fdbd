// Package keyword keeps an in-memory full-text index over ingested chunks so
// operators can see exactly what text the retriever has to work with.
package keyword

import "context"

// Entry is one chunk as handed to the index.
type Entry struct {
	DocumentID string
	Title      string
	Position   int
	Text       string
}

// ID returns the index key for an entry: document id and chunk position.
func (e Entry) ID() string {
	return chunkID(e.DocumentID, e.Position)
}

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// Fuzzy enables edit-distance matching for typo tolerance.
	Fuzzy bool
	// Fuzziness is the maximum edit distance (1 or 2). Default 1.
	Fuzziness int
	// TitleBoost weights matches in the document title. Values <= 1 disable it.
	TitleBoost float64
}

// Result is a single keyword search hit.
type Result struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Position   int     `json:"position"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// ChunkIndex defines the chunk lookup operations.
type ChunkIndex interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	DocCount() (uint64, error)
	Close() error
}
