package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

type OpenAIProvider struct {
	Model      string
	EmbedModel string
	APIKey     string
	baseURL    string       // For testing - defaults to OpenAI API
	httpClient *http.Client // For testing - defaults to http.DefaultClient
}

var (
	_ ai.Provider = (*OpenAIProvider)(nil)
	_ ai.Embedder = (*OpenAIProvider)(nil)
)

func NewOpenAIProvider(model string, apiKey string) *OpenAIProvider {
	return NewOpenAIProviderWithClient(model, apiKey, "", nil)
}

// NewOpenAIProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewOpenAIProviderWithClient(model, apiKey, baseURL string, client *http.Client) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAIProvider{
		Model:      model,
		EmbedModel: "text-embedding-3-small",
		APIKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (p *OpenAIProvider) ID() string {
	return "openai:" + p.Model
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float32         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	messages := []openAIMessage{}
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	var openAIResp openAIResponse
	err := p.post(ctx, "/chat/completions", openAIRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, &openAIResp)
	if err != nil {
		return nil, err
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no choices")
	}

	return &ai.CompletionResponse{
		Text:  openAIResp.Choices[0].Message.Content,
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  openAIResp.Usage.PromptTokens,
			OutputTokens: openAIResp.Usage.CompletionTokens,
		},
	}, nil
}

// Embed returns the embedding of text using EmbedModel.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	var eResp openAIEmbedResponse
	if err := p.post(ctx, "/embeddings", openAIEmbedRequest{Model: p.EmbedModel, Input: text}, &eResp); err != nil {
		return nil, err
	}
	if len(eResp.Data) == 0 || len(eResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no embedding")
	}
	return eResp.Data[0].Embedding, nil
}

func (p *OpenAIProvider) post(ctx context.Context, path string, in, out any) error {
	if p.APIKey == "" {
		return fmt.Errorf("OpenAI API key not provided (set OPENAI_API_KEY)")
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.APIKey)
	return postJSON(ctx, p.httpClient, "OpenAI", p.baseURL+path, header, in, out)
}
