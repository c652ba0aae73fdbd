package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name          string
		req           *AskRequest
		wantErr       bool
		wantTopK      int
		wantMaxLength int
	}{
		{"empty query", &AskRequest{Query: ""}, true, 0, 0},
		{"blank query", &AskRequest{Query: "  \n\t "}, true, 0, 0},
		{"defaults applied", &AskRequest{Query: "what is a tort?"}, false, 5, 150},
		{"overrides kept", &AskRequest{Query: "x", TopK: 2, MaxLength: 40}, false, 2, 40},
		{"negative overrides replaced", &AskRequest{Query: "x", TopK: -1, MaxLength: -3}, false, 5, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(5, 150)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("error should wrap ErrInvalidQuery, got %v", err)
				}
				return
			}
			if tt.req.TopK != tt.wantTopK || tt.req.MaxLength != tt.wantMaxLength {
				t.Errorf("got top_k=%d max_length=%d, want %d/%d", tt.req.TopK, tt.req.MaxLength, tt.wantTopK, tt.wantMaxLength)
			}
		})
	}
}

func TestAskRequest_ValidateTrims(t *testing.T) {
	req := &AskRequest{Query: "  hello  "}
	if err := req.Validate(1, 1); err != nil {
		t.Fatal(err)
	}
	if req.Query != "hello" {
		t.Errorf("query not trimmed: %q", req.Query)
	}
}

func TestErrorTag(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), "Internal"},
		{ErrConfig, "ConfigError"},
		{fmt.Errorf("%w: overlap 5 >= chunk size 5", ErrConfig), "ConfigError"},
		{fmt.Errorf("answer: %w", fmt.Errorf("%w: timeout", ErrGeneration)), "GenerationFailure"},
		{fmt.Errorf("%w: state loading", ErrModelsNotReady), "ModelsNotReady"},
		{ErrDimensionMismatch, "DimensionMismatch"},
		{ErrEmbedding, "EmbeddingFailure"},
		{ErrExtraction, "ExtractionFailure"},
		{ErrInvalidQuery, "InvalidQuery"},
	}
	for _, tt := range tests {
		if got := ErrorTag(tt.err); got != tt.want {
			t.Errorf("ErrorTag(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRankedResult_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(RankedResult{Text: "a", Similarity: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"text":"a","similarity":0.5}` {
		t.Errorf("got %s", b)
	}
	b, err = json.Marshal(RankedResult{Text: "z", Similarity: math.NaN()})
	if err != nil {
		t.Fatalf("NaN similarity must encode: %v", err)
	}
	if string(b) != `{"text":"z","similarity":null}` {
		t.Errorf("got %s", b)
	}
}
