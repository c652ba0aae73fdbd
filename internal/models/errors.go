package models

import "errors"

// Error taxonomy shared by every pipeline stage. Wrap with fmt.Errorf("%w: ...")
// and test with errors.Is.
var (
	ErrConfig            = errors.New("config error")
	ErrModelsNotReady    = errors.New("models not ready")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmbedding         = errors.New("embedding failure")
	ErrGeneration        = errors.New("generation failure")
	ErrExtraction        = errors.New("extraction failure")
	ErrInvalidQuery      = errors.New("invalid query")
)

var errorTags = []struct {
	err error
	tag string
}{
	{ErrConfig, "ConfigError"},
	{ErrModelsNotReady, "ModelsNotReady"},
	{ErrDimensionMismatch, "DimensionMismatch"},
	{ErrEmbedding, "EmbeddingFailure"},
	{ErrGeneration, "GenerationFailure"},
	{ErrExtraction, "ExtractionFailure"},
	{ErrInvalidQuery, "InvalidQuery"},
}

// ErrorTag returns the taxonomy name for err, "Internal" for untagged errors,
// and "" for nil.
func ErrorTag(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range errorTags {
		if errors.Is(err, t.err) {
			return t.tag
		}
	}
	return "Internal"
}
