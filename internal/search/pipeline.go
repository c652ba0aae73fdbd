// Package search answers questions against the published chunk store.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/modelhub"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// ModelSource hands out the loaded models; *modelhub.Handles implements it.
type ModelSource interface {
	Get() (modelhub.Models, error)
}

// Retrieve embeds query with the pinned options and returns the topK most
// similar chunks in store.
func Retrieve(ctx context.Context, query string, store *vector.Store, src ModelSource, topK int) ([]models.RankedResult, error) {
	_, results, err := retrieve(ctx, query, store, src, topK)
	return results, err
}

// Answer runs the full pipeline: retrieve, build the prompt, generate, and
// return the continuation. Nothing partial is returned on failure.
func Answer(ctx context.Context, query string, store *vector.Store, src ModelSource, topK, maxAnswerLength int) (string, error) {
	m, results, err := retrieve(ctx, query, store, src, topK)
	if err != nil {
		return "", err
	}
	prompt := BuildPrompt(query, results)
	gens, err := m.Generator.Generate(ctx, prompt, generation.Options{MaxLength: maxAnswerLength})
	if err != nil {
		return "", tag(ctx, models.ErrGeneration, err)
	}
	if len(gens) == 0 {
		return "", fmt.Errorf("%w: %s returned no generations", models.ErrGeneration, m.Generator.Name())
	}
	return continuation(prompt, gens[0].GeneratedText), nil
}

func retrieve(ctx context.Context, query string, store *vector.Store, src ModelSource, topK int) (modelhub.Models, []models.RankedResult, error) {
	if strings.TrimSpace(query) == "" {
		return modelhub.Models{}, nil, fmt.Errorf("%w: query cannot be empty", models.ErrInvalidQuery)
	}
	if src == nil {
		return modelhub.Models{}, nil, fmt.Errorf("%w: no model source", models.ErrModelsNotReady)
	}
	m, err := src.Get()
	if err != nil {
		return modelhub.Models{}, nil, err
	}
	if store == nil {
		return modelhub.Models{}, nil, fmt.Errorf("%w: document store not published", models.ErrModelsNotReady)
	}
	vec, err := m.Embedder.Embed(ctx, query, m.EmbedOptions)
	if err != nil {
		return modelhub.Models{}, nil, tag(ctx, models.ErrEmbedding, err)
	}
	results, err := vector.Rank(vec, store.All(), topK)
	if err != nil {
		return modelhub.Models{}, nil, err
	}
	return m, results, nil
}

// tag wraps err with sentinel unless it is a context error or already tagged.
func tag(ctx context.Context, sentinel, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
