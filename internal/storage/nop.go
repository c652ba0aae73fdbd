package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// NopJournal discards everything. Used when storage.disabled is set.
type NopJournal struct{}

func (NopJournal) StartRun(context.Context) (*models.IngestRun, error) {
	return &models.IngestRun{Status: models.RunStatusRunning}, nil
}
func (NopJournal) RecordDocument(context.Context, *models.DocumentRecord) error { return nil }
func (NopJournal) FinishRun(_ context.Context, run *models.IngestRun, runErr error) error {
	run.Status = models.RunStatusCompleted
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}
	return nil
}
func (NopJournal) LastRun(context.Context) (*models.IngestRun, error) { return nil, nil }
func (NopJournal) ListDocuments(context.Context, string) ([]*models.DocumentRecord, error) {
	return nil, nil
}
func (NopJournal) RecordQuestion(context.Context, *models.QuestionRecord) error { return nil }
func (NopJournal) RecentQuestions(context.Context, int) ([]*models.QuestionRecord, error) {
	return nil, nil
}
func (NopJournal) Stats(context.Context) (Stats, error) { return Stats{}, nil }
func (NopJournal) Close() error                         { return nil }
