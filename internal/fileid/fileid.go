// Package fileid derives stable document identifiers from corpus file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "doc:"

// DocID returns a stable document ID for the given absolute path: the same
// cleaned path always yields the same ID across runs.
func DocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:8])
}

// Title returns path relative to root with forward slashes, for display.
// Falls back to the base name when path is not under root.
func Title(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
