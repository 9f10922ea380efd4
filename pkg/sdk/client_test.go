package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go/client"
	"github.com/felixgeelhaar/mcp-go/protocol"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// mockTransport implements client.Transport and returns canned responses
// based on the method name in the request.
type mockTransport struct {
	closed    bool
	methods   []string
	responses map[string]any
}

func newMockTransport() *mockTransport {
	return &mockTransport{responses: make(map[string]any)}
}

func (m *mockTransport) setToolResponse(text string, isError bool) {
	result := map[string]any{"content": []any{
		map[string]any{"type": "text", "text": text},
	}}
	if isError {
		result["isError"] = true
	}
	m.responses["tools/call"] = result
}

func (m *mockTransport) setResourceResponse(text string) {
	m.responses["resources/read"] = map[string]any{
		"contents": []any{
			map[string]any{"uri": schemaURI, "text": text},
		},
	}
}

func (m *mockTransport) Send(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	m.methods = append(m.methods, req.Method)
	result, ok := m.responses[req.Method]
	if !ok {
		if req.Method == "initialize" {
			return protocol.NewResponse(req.ID, map[string]any{
				"serverInfo":      map[string]any{"name": "riskgate", "version": "1.0.0"},
				"protocolVersion": "2024-11-05",
				"capabilities":    map[string]any{"tools": map[string]any{}},
			}), nil
		}
		if req.IsNotification() {
			return nil, nil
		}
		return protocol.NewResponse(req.ID, map[string]any{
			"content": []any{map[string]any{"type": "text", "text": "ok"}},
		}), nil
	}
	return protocol.NewResponse(req.ID, result), nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

func newTestClient(t *testing.T, mt *mockTransport) *Client {
	t.Helper()
	c := NewClient(mt)
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func TestClient_Analyze(t *testing.T) {
	want := risk.Assessment{
		ID:       "a-1",
		Decision: risk.DecisionAutoBlock,
		Compound: risk.CompoundRiskResult{IsHigh: true, Score: 8.5},
		Findings: []risk.Finding{
			risk.NewFinding("structural-missing-budget", risk.KindStructural, risk.SeverityCritical, risk.ThemeContentCompleteness, "no budget"),
		},
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}

	mt := newMockTransport()
	mt.setToolResponse(string(data), false)
	c := newTestClient(t, mt)

	got, err := c.Analyze(context.Background(), AnalyzeRequest{Text: "proposal", SkipHistory: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.ID != "a-1" || !got.Blocked() || len(got.Findings) != 1 {
		t.Errorf("unexpected assessment %+v", got)
	}
	if mt.methods[len(mt.methods)-1] != "tools/call" {
		t.Errorf("expected a tools/call request, got %v", mt.methods)
	}
}

func TestClient_Patterns(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"library":{"version":"2024.2","patterns":120},"corpus_version":"2024.2","reference_clauses":9,"similarity_backend":"lexical"}`, false)
	c := newTestClient(t, mt)

	info, err := c.Patterns(context.Background())
	if err != nil {
		t.Fatalf("Patterns: %v", err)
	}
	if info.Library.Version != "2024.2" || info.Library.Patterns != 120 || info.Clauses != 9 || info.Similarity != "lexical" {
		t.Errorf("unexpected patterns info %+v", info)
	}
}

func TestClient_History(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"summary":{"total":2,"blocked":1,"high_risk":1,"decisions":{"auto_block":1,"manual_review":1}},
"assessments":[{"id":"a-2","decision":"auto_block","score":0.81,"compound_score":7.5,"high_risk":true,"findings":4,"created_at":"2026-01-02T10:00:00Z","document_hash":"abc"}]}`, false)
	c := newTestClient(t, mt)

	h, err := c.History(context.Background(), 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.Summary.Total != 2 || h.Summary.Decisions[risk.DecisionAutoBlock] != 1 {
		t.Errorf("unexpected summary %+v", h.Summary)
	}
	if len(h.Assessments) != 1 || h.Assessments[0].CreatedAt.Year() != 2026 || !h.Assessments[0].HighRisk {
		t.Errorf("unexpected entries %+v", h.Assessments)
	}
}

func TestClient_ReloadPatterns(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse("Pattern library 2025.1 active (130 patterns).", false)
	c := newTestClient(t, mt)

	msg, err := c.ReloadPatterns(context.Background())
	if err != nil || !strings.Contains(msg, "2025.1") {
		t.Errorf("ReloadPatterns = %q, %v", msg, err)
	}
}

func TestClient_ToolError(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse("Document is too short to analyze.", true)
	c := newTestClient(t, mt)

	_, err := c.Analyze(context.Background(), AnalyzeRequest{Text: "hi"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %T: %v", err, err)
	}
	if toolErr.Tool != "riskgate_analyze" || !strings.Contains(toolErr.Error(), "too short") {
		t.Errorf("unexpected tool error %v", toolErr)
	}
}

func TestClient_Compatible(t *testing.T) {
	mt := newMockTransport()
	mt.setResourceResponse(`{"schema_version":"1.0.0","server_version":"dev","decisions":["auto_approve","critical_block"],"blocking_decisions":["critical_block"]}`)
	c := newTestClient(t, mt)

	info, err := c.GetSchema(context.Background())
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if len(info.Blocking) != 1 || info.Blocking[0] != risk.DecisionCriticalBlock {
		t.Errorf("unexpected schema %+v", info)
	}
	if err := c.Compatible(context.Background()); err != nil {
		t.Errorf("expected compatible schema, got %v", err)
	}

	mt.setResourceResponse(`{"schema_version":"2.1.0"}`)
	if err := c.Compatible(context.Background()); err == nil {
		t.Error("expected major version mismatch")
	}
}

func TestTextResult(t *testing.T) {
	if _, err := textResult(&client.ToolResult{}); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
	if _, err := unmarshalText[PatternsInfo](&client.ToolResult{
		Content: []client.ContentItem{{Type: "text", Text: "not json"}},
	}); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestClient_Close(t *testing.T) {
	mt := newMockTransport()
	c := NewClient(mt)
	if err := c.Close(); err != nil || !mt.closed {
		t.Errorf("expected transport closed, got %v", err)
	}
}

func TestWithRetry(t *testing.T) {
	c := NewClient(newMockTransport(), WithRetry(0, 0), WithTimeout(time.Second))
	if c.retryCfg.MaxAttempts != 1 || c.timeout != time.Second {
		t.Errorf("unexpected client config %+v, %s", c.retryCfg, c.timeout)
	}
}
