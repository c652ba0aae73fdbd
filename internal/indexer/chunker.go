package indexer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Default window parameters, in words.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// Chunker splits text into overlapping word-based windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
// overlap must be in [0, chunkSize).
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if err := validateWindow(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// Chunk splits text into windows of chunkSize words, each starting
// chunkSize-overlap words after the previous one. Words are re-joined with
// single spaces; the last window may be shorter.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0)
	step := c.chunkSize - c.chunkOverlap
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// SplitIntoChunks is a one-shot Chunker.
func SplitIntoChunks(text string, chunkSize, chunkOverlap int) ([]string, error) {
	c, err := NewChunker(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return c.Chunk(text), nil
}

func validateWindow(chunkSize, chunkOverlap int) error {
	switch {
	case chunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrConfig, chunkSize)
	case chunkOverlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", models.ErrConfig, chunkOverlap)
	case chunkOverlap >= chunkSize:
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", models.ErrConfig, chunkOverlap, chunkSize)
	}
	return nil
}
