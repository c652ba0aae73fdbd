package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

// CorpusOptions describes where documents come from.
type CorpusOptions struct {
	Directories []string
	// Extensions filters files (case-insensitive, with or without dot). Empty = all.
	Extensions []string
	Recursive  bool
	Extractor  *extract.Extractor
	Logger     *zap.Logger
}

// LoadCorpus walks each directory in lexical order and extracts every
// matching file. A missing directory is created and logged; a file that
// cannot be read or parsed aborts the load. Hidden files and directories
// are skipped.
func LoadCorpus(ctx context.Context, opts CorpusOptions) ([]models.Document, error) {
	logger := utils.LoggerOrNop(opts.Logger)
	extractor := opts.Extractor
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	allowed := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		allowed["."+strings.TrimPrefix(strings.ToLower(e), ".")] = struct{}{}
	}

	var docs []models.Document
	seen := make(map[string]struct{})
	for _, dir := range opts.Directories {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve corpus directory %s: %w", dir, err)
		}
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logger.Warn("corpus directory not found, creating it", zap.String("path", root))
			if err := os.MkdirAll(root, 0755); err != nil {
				return nil, fmt.Errorf("create corpus directory: %w", err)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("%w: %s: %v", models.ErrExtraction, path, err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && !opts.Recursive {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if len(allowed) > 0 {
				if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
					return nil
				}
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}

			text, err := extractor.Extract(path)
			if err != nil {
				return err
			}
			docs = append(docs, models.Document{
				ID:    fileid.DocID(path),
				Title: fileid.Title(root, path),
				Path:  path,
				Text:  text,
			})
			logger.Debug("document loaded", zap.String("path", path), zap.Int("bytes", len(text)))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	logger.Info("corpus loaded", zap.Int("documents", len(docs)), zap.Strings("directories", opts.Directories))
	return docs, nil
}
