package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

func TestOllamaGenerator_Generate(t *testing.T) {
	var got struct {
		Model   string `json:"model"`
		Prompt  string `json:"prompt"`
		Stream  bool   `json:"stream"`
		Options struct {
			NumPredict int `json:"num_predict"`
		} `json:"options"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"A tort is a civil wrong.","done":true}`))
	}))
	defer srv.Close()

	g, err := NewOllamaGenerator(srv.URL, "llama3.2", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(context.Background(), "What is a tort?", Options{MaxLength: 150})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].GeneratedText != "A tort is a civil wrong." {
		t.Errorf("got %+v", out)
	}
	if got.Model != "llama3.2" || got.Prompt != "What is a tort?" || got.Stream || got.Options.NumPredict != 150 {
		t.Errorf("request = %+v", got)
	}
	if g.Name() != "ollama:llama3.2" {
		t.Errorf("Name() = %s", g.Name())
	}
}

func TestOllamaGenerator_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()
	g, _ := NewOllamaGenerator(srv.URL, "missing", time.Second)
	if _, err := g.Generate(context.Background(), "x", Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var maxTokens int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			MaxTokens int `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		maxTokens = req.MaxTokens
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Because of the contract."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator("sk-test", srv.URL+"/v1", "gpt-4o-mini", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(context.Background(), "why?", Options{MaxLength: 42})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].GeneratedText != "Because of the contract." {
		t.Errorf("got %+v", out)
	}
	if maxTokens != 42 {
		t.Errorf("max_tokens = %d, want 42", maxTokens)
	}
}

func TestExtractiveGenerator(t *testing.T) {
	g := NewExtractiveGenerator()
	prompt := "Question\n\nRelevant Legal Texts:\n- one two three four five\n- other\n\nAnswer:"
	out, err := g.Generate(context.Background(), prompt, Options{MaxLength: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out[0].GeneratedText, prompt) {
		t.Error("extractive output should echo the prompt")
	}
	if strings.TrimPrefix(out[0].GeneratedText, prompt) != " one two three" {
		t.Errorf("continuation = %q", strings.TrimPrefix(out[0].GeneratedText, prompt))
	}

	out, _ = g.Generate(context.Background(), "no context\nAnswer:", Options{MaxLength: 50})
	if !strings.Contains(out[0].GeneratedText, "could not find") {
		t.Errorf("got %q", out[0].GeneratedText)
	}
}

func TestNew(t *testing.T) {
	g, err := New(&config.GenerationConfig{Provider: config.ProviderExtractive})
	if err != nil || g.Name() != "extractive" {
		t.Fatalf("got %v, %v", g, err)
	}
	if _, err := New(&config.GenerationConfig{Provider: "gpt2"}); !errors.Is(err, models.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	g, err = New(&config.GenerationConfig{Provider: config.ProviderOpenAI, Model: "m"})
	if !errors.Is(err, models.ErrConfig) || g != nil {
		t.Errorf("missing key: expected nil generator and ErrConfig, got %v, %v", g, err)
	}
}
