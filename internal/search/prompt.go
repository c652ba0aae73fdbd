package search

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// BuildPrompt renders the fixed answer template: the question, then each
// retrieved chunk on its own "- " line, most similar first.
func BuildPrompt(query string, results []models.RankedResult) string {
	var b strings.Builder
	b.WriteString("You are an AI legal assistant. Based on the most relevant legal texts, answer this: \"")
	b.WriteString(query)
	b.WriteString("\"\n\nRelevant Legal Texts:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(r.Text)
	}
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// continuation drops a leading copy of the prompt, which text-generation
// backends commonly include in their output.
func continuation(prompt, generated string) string {
	return strings.TrimSpace(strings.TrimPrefix(generated, prompt))
}
