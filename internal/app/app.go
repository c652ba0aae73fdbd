// Package app builds Kotae's components from configuration and runs the
// startup sequence: load models, read the corpus, ingest, publish.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/modelhub"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

// Components holds everything a running service needs.
type Components struct {
	Config    *config.Config
	Logger    *zap.Logger
	Handles   *modelhub.Handles
	Engine    *search.Engine
	Chunks    *keyword.BleveIndex
	Journal   storage.Journal
	Staleness *watcher.Staleness

	loader  modelhub.LoadFunc
	watcher *watcher.Watcher
}

// Report summarizes a completed bootstrap.
type Report struct {
	Documents  int           `json:"documents"`
	Chunks     int           `json:"chunks"`
	Dimensions int           `json:"dimensions"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Option configures New.
type Option func(*Components)

// WithLoader replaces the config-driven model loader.
func WithLoader(fn modelhub.LoadFunc) Option {
	return func(c *Components) { c.loader = fn }
}

// WithJournal replaces the configured journal.
func WithJournal(j storage.Journal) Option {
	return func(c *Components) { c.Journal = j }
}

// New validates cfg and builds the components. Models are not loaded yet.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Components, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger = utils.LoggerOrNop(logger)
	c := &Components{
		Config:    cfg,
		Logger:    logger,
		Handles:   modelhub.NewHandles(),
		Staleness: &watcher.Staleness{},
		loader:    Loader(cfg),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Journal == nil {
		if cfg.Storage.Disabled || cfg.Storage.DatabasePath == "" {
			c.Journal = storage.NopJournal{}
		} else {
			j, err := storage.NewSQLiteJournal(cfg.Storage.DatabasePath)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize journal: %w", err)
			}
			c.Journal = j
		}
	}

	chunks, err := keyword.NewBleveIndex()
	if err != nil {
		_ = c.Journal.Close()
		return nil, fmt.Errorf("failed to initialize chunk index: %w", err)
	}
	c.Chunks = chunks

	c.Engine = search.NewEngine(c.Handles, cfg.Retrieval.TopK, cfg.Retrieval.MaxAnswerLength,
		search.WithLogger(logger), search.WithJournal(c.Journal))
	return c, nil
}

// Loader returns the model loader for cfg's providers.
func Loader(cfg *config.Config) modelhub.LoadFunc {
	return func(ctx context.Context) (modelhub.Models, error) {
		opts, err := embedding.OptionsFromConfig(&cfg.Embedding)
		if err != nil {
			return modelhub.Models{}, err
		}
		emb, err := embedding.New(&cfg.Embedding)
		if err != nil {
			return modelhub.Models{}, fmt.Errorf("embedding model: %w", err)
		}
		gen, err := generation.New(&cfg.Generation)
		if err != nil {
			_ = emb.Close()
			return modelhub.Models{}, fmt.Errorf("generation model: %w", err)
		}
		return modelhub.Models{Embedder: emb, Generator: gen, EmbedOptions: opts}, nil
	}
}

// Bootstrap runs the startup sequence once. Queries arriving before it
// returns fail with ErrModelsNotReady. Any error leaves nothing published.
func (c *Components) Bootstrap(ctx context.Context) (*Report, error) {
	start := time.Now()
	cfg := c.Config

	c.Logger.Info("loading models",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("generation_provider", cfg.Generation.Provider))
	if err := c.Handles.Load(ctx, c.loader); err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	m, err := c.Handles.Get()
	if err != nil {
		return nil, err
	}
	c.Logger.Info("models ready", zap.String("generator", m.Generator.Name()), zap.String("embed_options", m.EmbedOptions.String()))

	docs, err := indexer.LoadCorpus(ctx, indexer.CorpusOptions{
		Directories: cfg.Corpus.Directories,
		Extensions:  cfg.Corpus.Extensions,
		Recursive:   cfg.Corpus.RecursiveOrDefault(),
		Extractor:   extract.NewExtractor(),
		Logger:      c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	chunker, err := indexer.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.OverlapOrDefault())
	if err != nil {
		return nil, err
	}
	idx := indexer.NewIndexer(m.Embedder, m.EmbedOptions, chunker,
		indexer.WithLogger(c.Logger),
		indexer.WithKeywordIndex(c.Chunks),
		indexer.WithJournal(c.Journal),
		indexer.WithDimensions(cfg.Embedding.Dimensions))
	store, err := idx.Ingest(ctx, docs)
	if err != nil {
		return nil, err
	}
	c.Engine.Publish(store)

	if cfg.Corpus.Watch {
		if err := c.startWatcher(ctx); err != nil {
			c.Logger.Warn("corpus watch disabled", zap.Error(err))
		}
	}

	return &Report{
		Documents:  len(docs),
		Chunks:     store.Len(),
		Dimensions: store.Dimensions(),
		Elapsed:    time.Since(start),
	}, nil
}

func (c *Components) startWatcher(ctx context.Context) error {
	w := watcher.NewWatcher(c.Config.Corpus.Directories, c.Config.Corpus.Extensions, c.Config.Corpus.RecursiveOrDefault(),
		func(ch watcher.Change) {
			c.Staleness.Mark(ch)
			c.Logger.Warn("corpus changed after ingestion; restart to pick it up",
				zap.String("path", ch.Path), zap.String("op", string(ch.Op)))
		},
		watcher.WithLogger(c.Logger))
	if err := w.Start(ctx); err != nil {
		return err
	}
	c.watcher = w
	return nil
}

// Close stops the watcher and releases models, indexes and the journal.
func (c *Components) Close() error {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	var errs []error
	errs = append(errs, c.Handles.Close())
	if c.Chunks != nil {
		errs = append(errs, c.Chunks.Close())
	}
	if c.Journal != nil {
		errs = append(errs, c.Journal.Close())
	}
	return errors.Join(errs...)
}
