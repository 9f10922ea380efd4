package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// stubProvider implements Provider and Embedder for testing.
type stubProvider struct {
	id       string
	response *CompletionResponse
	vector   []float64
	err      error
}

func (m *stubProvider) ID() string { return m.id }
func (m *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}
func (m *stubProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

// stubRemediator drafts one fix per finding through a FixGenerator.
type stubRemediator struct {
	gen FixGenerator
}

func (r stubRemediator) Remediate(ctx context.Context, findings []risk.Finding, text string) (*risk.RemediationReport, error) {
	report := &risk.RemediationReport{Provider: "stub"}
	for _, f := range findings {
		fix, err := r.gen.GenerateFix(ctx, f, text)
		if err != nil {
			report.Fixes = append(report.Fixes, risk.Fix{FindingID: f.ID, Error: err.Error()})
			continue
		}
		report.Fixes = append(report.Fixes, *fix)
	}
	return report, nil
}

type fixFunc func(ctx context.Context, f risk.Finding, c string) (*risk.Fix, error)

func (fn fixFunc) GenerateFix(ctx context.Context, f risk.Finding, c string) (*risk.Fix, error) {
	return fn(ctx, f, c)
}

func TestProvider_InterfaceContract(t *testing.T) {
	var _ Provider = &stubProvider{}
	var _ Embedder = &stubProvider{}
	var _ Remediator = stubRemediator{}
}

func TestProvider_Complete(t *testing.T) {
	provider := &stubProvider{
		id:       "test-provider",
		response: &CompletionResponse{Text: "ok", Model: "m", Usage: TokenUsage{InputTokens: 10, OutputTokens: 5}},
	}
	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "ok" || resp.Usage.InputTokens+resp.Usage.OutputTokens != 15 {
		t.Errorf("unexpected response %+v", resp)
	}

	failing := &stubProvider{id: "down", err: fmt.Errorf("connection refused")}
	if _, err := failing.Embed(context.Background(), "x"); err == nil {
		t.Error("expected embed error")
	}
}

func TestRemediator_RecordsPerFindingFailures(t *testing.T) {
	gen := fixFunc(func(ctx context.Context, f risk.Finding, c string) (*risk.Fix, error) {
		if f.ID == "bad" {
			return nil, fmt.Errorf("model timeout")
		}
		return &risk.Fix{FindingID: f.ID, Text: "fixed", Confidence: 0.8}, nil
	})
	findings := []risk.Finding{
		risk.NewFinding("good", risk.KindClause, risk.SeverityHigh, risk.ThemeLegalDeviation, "altered"),
		risk.NewFinding("bad", risk.KindClause, risk.SeverityHigh, risk.ThemeLegalDeviation, "missing"),
	}
	report, err := stubRemediator{gen: gen}.Remediate(context.Background(), findings, "text")
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(report.Fixes))
	}
	if report.Fixes[1].Error != "model timeout" || report.Fixes[0].Text != "fixed" {
		t.Errorf("unexpected fixes %+v", report.Fixes)
	}
}
