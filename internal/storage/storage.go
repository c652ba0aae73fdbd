// Package storage keeps an audit journal of ingestion runs and questions.
// The journal is write-mostly: nothing in it is used to rebuild the
// in-memory vector store.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Stats summarizes journal contents.
type Stats struct {
	Runs      int64 `json:"runs"`
	Documents int64 `json:"documents"`
	Questions int64 `json:"questions"`
	Failures  int64 `json:"failed_questions"`
}

// Journal defines ingestion and question audit operations.
type Journal interface {
	// Ingestion runs
	StartRun(ctx context.Context) (*models.IngestRun, error)
	RecordDocument(ctx context.Context, rec *models.DocumentRecord) error
	FinishRun(ctx context.Context, run *models.IngestRun, runErr error) error
	LastRun(ctx context.Context) (*models.IngestRun, error)
	ListDocuments(ctx context.Context, runID string) ([]*models.DocumentRecord, error)

	// Questions
	RecordQuestion(ctx context.Context, rec *models.QuestionRecord) error
	RecentQuestions(ctx context.Context, limit int) ([]*models.QuestionRecord, error)

	Stats(ctx context.Context) (Stats, error)

	Close() error
}
