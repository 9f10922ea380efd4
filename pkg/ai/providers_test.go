package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/riskgate/pkg/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

func TestOllamaProvider_Defaults(t *testing.T) {
	p := infraAI.NewOllamaProvider("")
	if p.ID() != "ollama:llama3" {
		t.Errorf("expected ID ollama:llama3, got %s", p.ID())
	}
	if p.EmbedModel != "nomic-embed-text" {
		t.Errorf("expected default embed model, got %s", p.EmbedModel)
	}
}

func TestOllamaProvider_Validation(t *testing.T) {
	p := infraAI.NewOllamaProvider("invalid model;")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("expected error for invalid model name")
	}
	p = infraAI.NewOllamaProvider("llama3")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Temperature: -1}); err == nil {
		t.Error("expected error for negative temperature")
	}
}

func TestOllamaProvider_CompleteAndEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/api/generate":
			if body["format"] != "json" {
				t.Errorf("expected json format for a JSON prompt, got %v", body["format"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "  {\"text\":\"x\"}  ", "done": true, "prompt_eval_count": 12, "eval_count": 4})
		case "/api/embeddings":
			if body["model"] != "nomic-embed-text" {
				t.Errorf("unexpected embed model %v", body["model"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := infraAI.NewOllamaProviderWithClient("llama3", "", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Reply with JSON"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"text":"x"}` || resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 {
		t.Errorf("unexpected response %+v", resp)
	}

	vec, err := p.Embed(context.Background(), "payment terms")
	if err != nil || len(vec) != 2 {
		t.Errorf("unexpected embedding %v %v", vec, err)
	}
}

func TestOllamaProvider_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := infraAI.NewOllamaProviderWithClient("llama3", "", server.URL, server.Client())
	_, err := p.Embed(context.Background(), "x")
	var apiErr *infraAI.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.API != "Ollama" {
		t.Errorf("expected Ollama APIError for 500 status, got %v", err)
	}
}

func TestOpenAIProvider_CompleteAndEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		switch r.URL.Path {
		case "/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "done"}}},
				"usage":   map[string]int{"prompt_tokens": 5, "completion_tokens": 1},
			})
		case "/embeddings":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float64{1, 0, 0}}},
			})
		}
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("", "test-key", server.URL, server.Client())
	if p.ID() != "openai:gpt-4o" {
		t.Errorf("expected default model, got %s", p.ID())
	}
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{System: "s", Prompt: "p"})
	if err != nil || resp.Text != "done" || resp.Usage.InputTokens != 5 {
		t.Errorf("unexpected completion %+v %v", resp, err)
	}
	vec, err := p.Embed(context.Background(), "x")
	if err != nil || len(vec) != 3 {
		t.Errorf("unexpected embedding %v %v", vec, err)
	}
}

func TestOpenAIProvider_NoAPIKey(t *testing.T) {
	p := infraAI.NewOpenAIProvider("gpt-4o", "")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key 'test-key', got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("unexpected anthropic-version %q", r.Header.Get("anthropic-version"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"text": "Hello from Anthropic!"}},
			"usage":   map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	p := infraAI.NewAnthropicProviderWithClient("claude-3-haiku", "test-key", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Hello from Anthropic!" || resp.Usage.OutputTokens != 5 {
		t.Errorf("unexpected response %+v", resp)
	}

	if _, err := infraAI.NewAnthropicProvider("", "").Complete(context.Background(), ai.CompletionRequest{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-goog-api-key"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["system_instruction"] == nil || body["generationConfig"] == nil {
			t.Errorf("expected system instruction and generation config, got %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates":    []map[string]any{{"content": map[string]any{"parts": []map[string]any{{"text": "Hello from Gemini!"}}}}},
			"usageMetadata": map[string]int{"promptTokenCount": 7, "candidatesTokenCount": 3},
		})
	}))
	defer server.Close()

	p := infraAI.NewGeminiProviderWithClient("gemini-1.5-flash", "test-key", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello", System: "Be brief", MaxTokens: 50})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Hello from Gemini!" || resp.Usage.InputTokens != 7 {
		t.Errorf("unexpected response %+v", resp)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer empty.Close()
	p = infraAI.NewGeminiProviderWithClient("", "test-key", empty.URL, empty.Client())
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello"}); err == nil {
		t.Error("expected error for a reply without candidates")
	}

	if _, err := infraAI.NewGeminiProvider("", "").Complete(context.Background(), ai.CompletionRequest{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestMockProvider(t *testing.T) {
	p := &infraAI.MockProvider{Model: "m"}
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Fix the warranty clause\nmore"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	var fix struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &fix); err != nil {
		t.Fatalf("expected JSON completion: %v", err)
	}
	if fix.Text != "Revise: Fix the warranty clause" || fix.Confidence != 0.5 {
		t.Errorf("unexpected fix %+v", fix)
	}

	a, _ := p.Embed(context.Background(), "Payment terms net thirty")
	b, _ := p.Embed(context.Background(), "payment TERMS net thirty.")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("expected case and punctuation insensitive embeddings")
		}
	}
}

type flakyProvider struct {
	calls atomic.Int32
	fails int32
}

func (p *flakyProvider) ID() string { return "flaky" }

func (p *flakyProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.calls.Add(1) <= p.fails {
		return nil, errors.New("transient")
	}
	return &ai.CompletionResponse{Text: "ok"}, nil
}

func TestResilientProvider_DefaultConfig(t *testing.T) {
	cfg := infraAI.DefaultResilienceConfig()
	if cfg.MaxRetries != 2 || cfg.RetryDelay != time.Second || cfg.Timeout != 300*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	p := infraAI.NewResilientProviderWithConfig(&infraAI.MockProvider{Model: "test"}, infraAI.ResilienceConfig{MaxRetries: 5})
	if p.ID() != "mock:test" {
		t.Errorf("expected ID 'mock:test', got %q", p.ID())
	}
	if p.Config().MaxRetries != 5 || p.Config().Timeout != cfg.Timeout {
		t.Errorf("expected zero fields to take defaults, got %+v", p.Config())
	}
}

func TestResilientProvider_Retries(t *testing.T) {
	inner := &flakyProvider{fails: 1}
	p := infraAI.NewResilientProviderWithConfig(inner, infraAI.ResilienceConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Timeout:    time.Second,
	})
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("expected recovery after retry, got %v %v", resp, err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls.Load())
	}
}

func TestResilientProvider_EmbedRequiresEmbedder(t *testing.T) {
	p := infraAI.NewResilientProvider(&flakyProvider{})
	if _, err := p.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error for a provider that cannot embed")
	}
	p = infraAI.NewResilientProvider(&infraAI.MockProvider{})
	if vec, err := p.Embed(context.Background(), "x"); err != nil || len(vec) == 0 {
		t.Errorf("expected embedding, got %v %v", vec, err)
	}
}

func TestNewProvider(t *testing.T) {
	t.Setenv("RISKGATE_AI_PROVIDER", "")
	t.Setenv("RISKGATE_AI_MODEL", "")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "ollama:llama3", false},
		{"mock", "mock:", false},
		{"openai", "openai:gpt-4o", false},
		{"anthropic", "anthropic:claude-3-5-sonnet-20240620", false},
		{"gemini", "gemini:gemini-1.5-pro", false},
		{"watson", "", true},
	}
	for _, tt := range tests {
		p, err := infraAI.NewProvider(tt.name, "")
		if (err != nil) != tt.wantErr {
			t.Fatalf("NewProvider(%q) error = %v", tt.name, err)
		}
		if err == nil && p.ID() != tt.want {
			t.Errorf("NewProvider(%q) = %s, want %s", tt.name, p.ID(), tt.want)
		}
	}

	t.Setenv("RISKGATE_AI_PROVIDER", "mock")
	t.Setenv("RISKGATE_AI_MODEL", "fixture")
	p, err := infraAI.GetDefaultProvider("ollama", "llama3")
	if err != nil || p.ID() != "mock:fixture" {
		t.Errorf("expected env override, got %v %v", p, err)
	}
}
