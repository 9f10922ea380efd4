package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ai.Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(model string, apiKey string) *GeminiProvider {
	return NewGeminiProviderWithClient(model, apiKey, "", nil)
}

// NewGeminiProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewGeminiProviderWithClient(model, apiKey, baseURL string, client *http.Client) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-pro"
	}
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &GeminiProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (p *GeminiProvider) ID() string {
	return "gemini:" + p.Model
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not provided (set GEMINI_API_KEY)")
	}

	gReq := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		gReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		gReq.GenerationConfig = &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	header := http.Header{}
	header.Set("x-goog-api-key", p.APIKey)
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.Model)

	var gResp geminiResponse
	if err := postJSON(ctx, p.httpClient, "Gemini", url, header, gReq, &gResp); err != nil {
		return nil, err
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini API returned no candidates")
	}

	var text strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &ai.CompletionResponse{
		Text:  text.String(),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  gResp.UsageMetadata.PromptTokenCount,
			OutputTokens: gResp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
