package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// OllamaGenerator calls a local Ollama server's /api/generate endpoint.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaGenerator constructs a generator backed by a local LLM.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration) (*OllamaGenerator, error) {
	if baseURL == "" || model == "" {
		return nil, fmt.Errorf("%w: ollama generator needs base_url and model", models.ErrConfig)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Generate sends prompt with num_predict bounded by opts.MaxLength.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, opts Options) ([]Generation, error) {
	body := map[string]interface{}{
		"model":  g.model,
		"prompt": prompt,
		"stream": false,
	}
	if opts.MaxLength > 0 {
		body["options"] = map[string]interface{}{"num_predict": opts.MaxLength}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: %s", resp.Status)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return []Generation{{GeneratedText: result.Response}}, nil
}

// Name identifies the backend in logs and status output.
func (g *OllamaGenerator) Name() string {
	return "ollama:" + g.model
}

// Close is a no-op.
func (g *OllamaGenerator) Close() error {
	return nil
}
