package models

import (
	"encoding/json"
	"math"
)

// RankedResult is one chunk scored against a query vector.
// Similarity is NaN when either vector has zero norm.
type RankedResult struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// MarshalJSON encodes a NaN similarity as null, which encoding/json cannot
// represent as a number.
func (r RankedResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Text       string   `json:"text"`
		Similarity *float64 `json:"similarity"`
	}{Text: r.Text}
	if !math.IsNaN(r.Similarity) {
		s := r.Similarity
		out.Similarity = &s
	}
	return json.Marshal(out)
}

// AskResponse is the success body of POST /ask.
type AskResponse struct {
	Response string `json:"response"`
}

// RetrieveResponse is the body of POST /api/v1/retrieve.
type RetrieveResponse struct {
	Query     string         `json:"query"`
	Results   []RankedResult `json:"results"`
	QueryTime int64          `json:"query_time_ms"`
}
