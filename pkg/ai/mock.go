package ai

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

const mockDimensions = 64

// MockProvider is a deterministic offline provider. Completions echo a JSON
// fix for the first prompt line; embeddings are hashed bags of words.
type MockProvider struct {
	Model string
}

var (
	_ ai.Provider = (*MockProvider)(nil)
	_ ai.Embedder = (*MockProvider)(nil)
)

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(req.Prompt), "\n")
	text, _ := json.Marshal(map[string]any{
		"text":       "Revise: " + first,
		"confidence": 0.5,
		"rationale":  "generated offline by the mock provider",
	})
	return &ai.CompletionResponse{
		Text:  string(text),
		Model: p.Model,
		Usage: ai.TokenUsage{InputTokens: len(req.Prompt) / 4, OutputTokens: len(text) / 4},
	}, nil
}

func (p *MockProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, mockDimensions)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,;:!?()\"'")))
		vec[h.Sum32()%mockDimensions]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
