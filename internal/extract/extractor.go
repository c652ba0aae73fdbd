// Package extract turns corpus files into plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// DefaultMaxFileSize bounds how much of the corpus is read into memory per file.
const DefaultMaxFileSize = 64 << 20

type formatFunc func(content []byte) (string, error)

var formats = map[string]formatFunc{
	".txt":  extractPlain,
	".md":   extractPlain,
	".rst":  extractPlain,
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".xlsx": extractExcel,
	".odt":  extractODF,
	".odp":  extractODF,
	".ods":  extractODF,
	".rtf":  extractRTF,
}

// SupportedExtensions lists the extensions ExtractBytes understands, sorted.
func SupportedExtensions() []string {
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extractor extracts plain text from document files.
type Extractor struct {
	maxFileSize int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxFileSize rejects files larger than n bytes. n <= 0 disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(e *Extractor) { e.maxFileSize = n }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its text content. Every failure
// wraps models.ErrExtraction and names the file.
func (e *Extractor) Extract(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrExtraction, path, err)
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return "", fmt.Errorf("%w: %s: %d bytes exceeds limit of %d", models.ErrExtraction, path, info.Size(), e.maxFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrExtraction, path, err)
	}
	text, err := e.ExtractBytes(content, filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// ExtractBytes extracts text from content based on the given extension
// (leading dot, any case). Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := formats[strings.ToLower(ext)]
	if !ok {
		fn = extractPlain
	}
	text, err := fn(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExtraction, err)
	}
	return text, nil
}
