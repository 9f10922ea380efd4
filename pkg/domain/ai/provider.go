package ai

import (
	"context"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// CompletionRequest represents a prompt to the AI.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse represents the AI's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for all AI backends.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Embedder turns text into a vector. Providers that can embed implement it
// alongside Provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// FixGenerator drafts replacement text for a single finding.
type FixGenerator interface {
	GenerateFix(ctx context.Context, finding risk.Finding, documentContext string) (*risk.Fix, error)
}

// Remediator produces advisory fixes for a high-risk document. It must not
// change the findings it receives.
type Remediator interface {
	Remediate(ctx context.Context, findings []risk.Finding, text string) (*risk.RemediationReport, error)
}
