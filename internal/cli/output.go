// Package cli formats command output for Kotae's CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat selects human or machine output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat accepts "text" or "json" (case-insensitive).
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer, optionally followed by the chunks it was grounded on.
func WriteAnswer(w io.Writer, answer string, sources []models.RankedResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			Response string                `json:"response"`
			Sources  []models.RankedResult `json:"sources,omitempty"`
		}{answer, sources})
	}
	fmt.Fprintln(w, answer)
	if len(sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		writeRanked(w, sources)
	}
	return nil
}

// WriteRetrieve writes ranked chunks.
func WriteRetrieve(w io.Writer, resp *models.RetrieveResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nFound %d chunks in %dms\n\n", len(resp.Results), resp.QueryTime)
	writeRanked(w, resp.Results)
	return nil
}

func writeRanked(w io.Writer, results []models.RankedResult) {
	for i, r := range results {
		score := "n/a"
		if !math.IsNaN(r.Similarity) {
			score = fmt.Sprintf("%.4f", r.Similarity)
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, score, utils.Truncate(r.Text, 200))
	}
}

// IngestReport is what `kotae ingest` prints.
type IngestReport struct {
	Documents  int           `json:"documents"`
	Chunks     int           `json:"chunks"`
	Dimensions int           `json:"dimensions"`
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}

// WriteIngestReport writes an ingestion summary.
func WriteIngestReport(w io.Writer, r IngestReport, format OutputFormat) error {
	r.ElapsedMs = r.Elapsed.Milliseconds()
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Ingested %d documents into %d chunks (%d dimensions) in %s\n",
		r.Documents, r.Chunks, r.Dimensions, r.Elapsed.Round(time.Millisecond))
	return nil
}

// WriteStatus writes the decoded body of GET /api/v1/status.
func WriteStatus(w io.Writer, status map[string]any, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "State:      %v\n", status["state"])
	if e, ok := status["error"]; ok {
		fmt.Fprintf(w, "Error:      %v\n", e)
	}
	fmt.Fprintf(w, "Chunks:     %v\n", status["chunks"])
	fmt.Fprintf(w, "Dimensions: %v\n", status["dimensions"])
	if corpus, ok := status["corpus"].(map[string]any); ok {
		fmt.Fprintf(w, "Corpus:     %v\n", corpus["directories"])
		if stale, _ := corpus["stale"].(bool); stale {
			fmt.Fprintf(w, "            stale: %v changes since ingestion (last: %v)\n", corpus["changes"], corpus["last_change"])
		}
	}
	if journal, ok := status["journal"].(map[string]any); ok {
		fmt.Fprintf(w, "Questions:  %v (%v failed)\n", journal["questions"], journal["failed_questions"])
	}
	return nil
}
