// Package generation turns an assembled prompt into text via Ollama,
// OpenAI-compatible chat APIs, or an offline extractive fallback.
package generation

import "context"

// Options bound one generation call. MaxLength is the maximum number of new
// tokens (words, for the extractive generator).
type Options struct {
	MaxLength int
}

// Generation is one candidate continuation.
type Generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generator produces continuations for a prompt. Implementations return at
// least one Generation on success.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) ([]Generation, error)
	Name() string
	Close() error
}
