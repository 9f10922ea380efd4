package ai

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaProvider talks to a local Ollama server for completions and
// embeddings.
type OllamaProvider struct {
	Model      string
	EmbedModel string
	baseURL    string
	httpClient *http.Client
}

var (
	_ ai.Provider = (*OllamaProvider)(nil)
	_ ai.Embedder = (*OllamaProvider)(nil)
)

func NewOllamaProvider(model string) *OllamaProvider {
	return NewOllamaProviderWithClient(model, "", "", nil)
}

// NewOllamaProviderWithClient creates a provider with a custom embedding
// model, base URL and HTTP client. Empty values fall back to defaults.
func NewOllamaProviderWithClient(model, embedModel, baseURL string, client *http.Client) *OllamaProvider {
	if model == "" {
		model = "llama3"
	}
	if embedModel == "" {
		embedModel = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaProvider{Model: model, EmbedModel: embedModel, baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

func (p *OllamaProvider) ID() string {
	return "ollama:" + p.Model
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

var safeModelName = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)

func (p *OllamaProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if !safeModelName.MatchString(p.Model) {
		return nil, fmt.Errorf("invalid model name: %s", p.Model)
	}
	if req.Temperature < 0 {
		return nil, fmt.Errorf("invalid temperature")
	}

	format := ""
	if strings.Contains(req.Prompt, "JSON") || strings.Contains(req.System, "JSON") {
		format = "json"
	}
	var options map[string]any
	if req.Temperature > 0 {
		options = map[string]any{"temperature": req.Temperature}
	}

	var oResp ollamaResponse
	err := p.post(ctx, "/api/generate", ollamaRequest{
		Model:   p.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Format:  format,
		Options: options,
	}, &oResp)
	if err != nil {
		return nil, err
	}

	return &ai.CompletionResponse{
		Text:  strings.TrimSpace(oResp.Response),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  oResp.PromptEvalCount,
			OutputTokens: oResp.EvalCount,
		},
	}, nil
}

// Embed returns the embedding of text using EmbedModel.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if !safeModelName.MatchString(p.EmbedModel) {
		return nil, fmt.Errorf("invalid model name: %s", p.EmbedModel)
	}
	var eResp ollamaEmbedResponse
	if err := p.post(ctx, "/api/embeddings", ollamaEmbedRequest{Model: p.EmbedModel, Prompt: text}, &eResp); err != nil {
		return nil, err
	}
	if len(eResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return eResp.Embedding, nil
}

func (p *OllamaProvider) post(ctx context.Context, path string, in, out any) error {
	return postJSON(ctx, p.httpClient, "Ollama", p.baseURL+path, nil, in, out)
}
