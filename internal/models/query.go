package models

import (
	"fmt"
	"strings"
	"time"
)

// AskRequest is the body of POST /ask. TopK and MaxLength are optional
// overrides; zero means "use the configured default".
type AskRequest struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
}

// Validate trims the query and fills defaults for unset limits.
// Returns an error wrapping ErrInvalidQuery if the query is blank.
func (q *AskRequest) Validate(defaultTopK, defaultMaxLength int) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}
	if q.TopK <= 0 {
		q.TopK = defaultTopK
	}
	if q.MaxLength <= 0 {
		q.MaxLength = defaultMaxLength
	}
	return nil
}

// QuestionRecord is the journal entry for one answered (or failed) question.
type QuestionRecord struct {
	ID          string    `json:"id" db:"id"`
	Query       string    `json:"query" db:"query"`
	AnswerChars int       `json:"answer_chars" db:"answer_chars"`
	ErrorTag    string    `json:"error_tag,omitempty" db:"error_tag"`
	DurationMs  int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
