// Package models defines core data structures for documents, chunks, questions, and answers.
package models

import "time"

// Document is one corpus file after text extraction: the (id, raw text) pair
// handed to ingestion, plus where it came from.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path,omitempty"`
	Text  string `json:"-"`
}

// Chunk is a contiguous slice of document text paired with its embedding.
// Chunks are never mutated after they are appended to a store.
type Chunk struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// IngestRun records one startup ingestion pass in the journal.
type IngestRun struct {
	ID         string     `json:"id" db:"id"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Documents  int        `json:"documents" db:"documents"`
	Chunks     int        `json:"chunks" db:"chunks"`
	Status     string     `json:"status" db:"status"`
	Error      string     `json:"error,omitempty" db:"error"`
}

// Ingest run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// DocumentRecord is the journal entry for one ingested document.
type DocumentRecord struct {
	ID         string    `json:"id" db:"id"`
	RunID      string    `json:"run_id" db:"run_id"`
	Title      string    `json:"title" db:"title"`
	Path       string    `json:"path" db:"path"`
	Chunks     int       `json:"chunks" db:"chunks"`
	IngestedAt time.Time `json:"ingested_at" db:"ingested_at"`
}
