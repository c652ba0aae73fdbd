// Package indexer turns extracted documents into an embedded, in-memory chunk store.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
)

// Indexer chunks and embeds documents into a fresh vector store.
type Indexer struct {
	embedder     embedding.Embedder
	embedOptions embedding.Options
	chunker      *Chunker
	dimensions   int
	keywordIndex keyword.ChunkIndex // optional
	journal      storage.Journal    // optional
	logger       *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for per-document progress.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithKeywordIndex feeds every chunk text into a lookup index as well.
func WithKeywordIndex(k keyword.ChunkIndex) IndexerOption {
	return func(idx *Indexer) { idx.keywordIndex = k }
}

// WithJournal records the run and its documents.
func WithJournal(j storage.Journal) IndexerOption {
	return func(idx *Indexer) { idx.journal = j }
}

// WithDimensions pins the store dimensionality up front instead of adopting
// it from the first chunk.
func WithDimensions(d int) IndexerOption {
	return func(idx *Indexer) { idx.dimensions = d }
}

// NewIndexer creates an indexer. Every chunk is embedded with embedOptions,
// which must be the same options queries are embedded with.
func NewIndexer(embedder embedding.Embedder, embedOptions embedding.Options, chunker *Chunker, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		embedder:     embedder,
		embedOptions: embedOptions,
		chunker:      chunker,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Ingest chunks and embeds docs in order, one chunk at a time, and returns
// the filled store. The first embedding failure aborts the whole run; no
// partial store is returned.
func (idx *Indexer) Ingest(ctx context.Context, docs []models.Document) (*vector.Store, error) {
	start := time.Now()
	run := idx.startRun(ctx)

	store, err := idx.ingest(ctx, docs, run)
	if run != nil {
		run.Documents = len(docs)
		if store != nil {
			run.Chunks = store.Len()
		}
		// the run outcome is recorded even when ctx was cancelled
		if jerr := idx.journal.FinishRun(context.WithoutCancel(ctx), run, err); jerr != nil {
			idx.logger.Warn("journal finish run failed", zap.Error(jerr))
		}
	}
	if err != nil {
		idx.logger.Error("ingestion failed",
			zap.String("error_tag", models.ErrorTag(err)), zap.Error(err))
		return nil, err
	}
	idx.logger.Info("ingestion complete",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", store.Len()),
		zap.Int("dimensions", store.Dimensions()),
		zap.Duration("elapsed", time.Since(start)))
	return store, nil
}

func (idx *Indexer) ingest(ctx context.Context, docs []models.Document, run *models.IngestRun) (*vector.Store, error) {
	store := vector.NewStore(idx.dimensions)
	for _, doc := range docs {
		texts := idx.chunker.Chunk(doc.Text)
		entries := make([]keyword.Entry, 0, len(texts))
		for pos, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			vec, err := idx.embedder.Embed(ctx, text, idx.embedOptions)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, fmt.Errorf("%w: document %s chunk %d: %w", models.ErrEmbedding, doc.ID, pos, err)
			}
			if err := store.Append(models.Chunk{Text: text, Embedding: vec}); err != nil {
				return nil, fmt.Errorf("document %s chunk %d: %w", doc.ID, pos, err)
			}
			entries = append(entries, keyword.Entry{DocumentID: doc.ID, Title: doc.Title, Position: pos, Text: text})
		}
		if len(texts) == 0 {
			idx.logger.Warn("document has no text", zap.String("id", doc.ID), zap.String("path", doc.Path))
		}
		idx.logger.Debug("document ingested",
			zap.String("id", doc.ID), zap.String("title", doc.Title), zap.Int("chunks", len(texts)))

		if idx.keywordIndex != nil {
			if err := idx.keywordIndex.Add(ctx, entries); err != nil {
				idx.logger.Warn("chunk lookup index add failed", zap.String("id", doc.ID), zap.Error(err))
			}
		}
		if run != nil {
			rec := &models.DocumentRecord{ID: doc.ID, RunID: run.ID, Title: doc.Title, Path: doc.Path, Chunks: len(texts)}
			if err := idx.journal.RecordDocument(ctx, rec); err != nil {
				idx.logger.Warn("journal record document failed", zap.String("id", doc.ID), zap.Error(err))
			}
		}
	}
	return store, nil
}

func (idx *Indexer) startRun(ctx context.Context) *models.IngestRun {
	if idx.journal == nil {
		return nil
	}
	run, err := idx.journal.StartRun(ctx)
	if err != nil {
		idx.logger.Warn("journal start run failed", zap.Error(err))
		return nil
	}
	return run
}
