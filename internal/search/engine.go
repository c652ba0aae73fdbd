package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
)

// Engine serves questions from the store published after ingestion. Until
// Publish is called every request fails with ErrModelsNotReady.
type Engine struct {
	models           ModelSource
	store            atomic.Pointer[vector.Store]
	defaultTopK      int
	defaultMaxLength int
	journal          storage.Journal
	logger           *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for per-question outcomes.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithJournal records every Ask outcome.
func WithJournal(j storage.Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// NewEngine creates an engine. defaultTopK and defaultMaxLength apply to
// requests that leave them unset.
func NewEngine(src ModelSource, defaultTopK, defaultMaxLength int, opts ...EngineOption) *Engine {
	e := &Engine{
		models:           src,
		defaultTopK:      defaultTopK,
		defaultMaxLength: defaultMaxLength,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Publish makes store visible to queries. The store must not be appended to afterwards.
func (e *Engine) Publish(store *vector.Store) {
	e.store.Store(store)
}

// Store returns the published store, or nil before Publish.
func (e *Engine) Store() *vector.Store {
	return e.store.Load()
}

// Ask answers req.Query.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (string, error) {
	start := time.Now()
	answer, err := e.ask(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Warn("question failed",
			zap.String("error_tag", models.ErrorTag(err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		e.logger.Info("question answered",
			zap.Int("top_k", req.TopK),
			zap.Int("answer_chars", len(answer)),
			zap.Duration("elapsed", elapsed))
	}
	if e.journal != nil {
		rec := &models.QuestionRecord{
			Query:       req.Query,
			AnswerChars: len(answer),
			ErrorTag:    models.ErrorTag(err),
			DurationMs:  elapsed.Milliseconds(),
		}
		if jerr := e.journal.RecordQuestion(context.WithoutCancel(ctx), rec); jerr != nil {
			e.logger.Warn("journal record question failed", zap.Error(jerr))
		}
	}
	return answer, err
}

func (e *Engine) ask(ctx context.Context, req *models.AskRequest) (string, error) {
	if err := ProcessQuery(req, e.defaultTopK, e.defaultMaxLength); err != nil {
		return "", err
	}
	return Answer(ctx, req.Query, e.store.Load(), e.models, req.TopK, req.MaxLength)
}

// Retrieve returns the ranked chunks for req.Query without generating.
func (e *Engine) Retrieve(ctx context.Context, req *models.AskRequest) (*models.RetrieveResponse, error) {
	start := time.Now()
	if err := ProcessQuery(req, e.defaultTopK, e.defaultMaxLength); err != nil {
		return nil, err
	}
	results, err := Retrieve(ctx, req.Query, e.store.Load(), e.models, req.TopK)
	if err != nil {
		return nil, err
	}
	return &models.RetrieveResponse{
		Query:     req.Query,
		Results:   results,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}
