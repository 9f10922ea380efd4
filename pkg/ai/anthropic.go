package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

type AnthropicProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ai.Provider = (*AnthropicProvider)(nil)

func NewAnthropicProvider(model string, apiKey string) *AnthropicProvider {
	return NewAnthropicProviderWithClient(model, apiKey, "", nil)
}

// NewAnthropicProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewAnthropicProviderWithClient(model, apiKey, baseURL string, client *http.Client) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &AnthropicProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *AnthropicProvider) ID() string {
	return "anthropic:" + p.Model
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key not provided (set ANTHROPIC_API_KEY)")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	header := http.Header{}
	header.Set("x-api-key", p.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	var out anthropicResponse
	err := postJSON(ctx, p.httpClient, "Anthropic", p.baseURL, header, anthropicRequest{
		Model:       p.Model,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}, &out)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("Anthropic API returned no text content")
	}

	return &ai.CompletionResponse{
		Text:  text.String(),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
	}, nil
}
