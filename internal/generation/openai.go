package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator sends the prompt as a single user message to an
// OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a chat generator. baseURL may be empty for the public API.
func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai generator needs an API key", models.ErrConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: openai generator needs a model", models.ErrConfig)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate returns one Generation per returned choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts Options) ([]Generation, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.MaxLength > 0 {
		req.MaxTokens = opts.MaxLength
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: no choices returned")
	}
	out := make([]Generation, len(resp.Choices))
	for i, c := range resp.Choices {
		out[i] = Generation{GeneratedText: c.Message.Content}
	}
	return out, nil
}

// Name identifies the backend in logs and status output.
func (g *OpenAIGenerator) Name() string {
	return "openai:" + g.model
}

// Close is a no-op.
func (g *OpenAIGenerator) Close() error {
	return nil
}
