package generation

import (
	"context"
	"strings"

	"github.com/hyperjump/kotae/pkg/utils"
)

// ExtractiveGenerator answers without a language model: it echoes the prompt
// and appends the first bulleted context line, cut to MaxLength words. Useful
// offline and in tests, where a deterministic answer is worth more than a
// fluent one.
type ExtractiveGenerator struct{}

// NewExtractiveGenerator returns the offline generator.
func NewExtractiveGenerator() *ExtractiveGenerator {
	return &ExtractiveGenerator{}
}

// Generate returns prompt + best context line, mimicking text-generation
// pipelines that include the prompt in their output.
func (g *ExtractiveGenerator) Generate(ctx context.Context, prompt string, opts Options) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer := "I could not find relevant text in the corpus."
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "- ") {
			answer = strings.TrimPrefix(line, "- ")
			break
		}
	}
	return []Generation{{GeneratedText: prompt + " " + utils.TruncateWords(answer, opts.MaxLength)}}, nil
}

// Name identifies the backend in logs and status output.
func (g *ExtractiveGenerator) Name() string {
	return "extractive"
}

// Close is a no-op.
func (g *ExtractiveGenerator) Close() error {
	return nil
}
