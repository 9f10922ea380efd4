package application_test

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

type MockRepo struct {
	Initialized bool
	Patterns    []byte
	Templates   []byte
	Events      []domain.Event
	Assessments []risk.Assessment
	SaveError   error
	LoadError   error
}

func (m *MockRepo) Initialize() error                   { m.Initialized = true; return m.SaveError }
func (m *MockRepo) IsInitialized() bool                 { return m.Initialized }
func (m *MockRepo) SavePatterns(data []byte) error      { m.Patterns = data; return m.SaveError }
func (m *MockRepo) SaveTemplates(data []byte) error     { m.Templates = data; return m.SaveError }
func (m *MockRepo) LoadPatterns() ([]byte, error)       { return m.Patterns, m.LoadError }
func (m *MockRepo) LoadTemplates() ([]byte, error)      { return m.Templates, m.LoadError }
func (m *MockRepo) LoadEvents() ([]domain.Event, error) { return m.Events, m.LoadError }

func (m *MockRepo) RecordEvent(e domain.Event) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockRepo) SaveAssessment(a *risk.Assessment) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Assessments = append(m.Assessments, *a)
	return nil
}

func (m *MockRepo) LoadAssessments(limit int) ([]risk.Assessment, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	out := make([]risk.Assessment, 0, len(m.Assessments))
	for i := len(m.Assessments) - 1; i >= 0; i-- {
		out = append(out, m.Assessments[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepo) FindAssessment(id string) (*risk.Assessment, error) {
	for i := range m.Assessments {
		if m.Assessments[i].ID == id {
			return &m.Assessments[i], nil
		}
	}
	return nil, fmt.Errorf("assessment %s not found", id)
}

var _ domain.WorkspaceRepository = (*MockRepo)(nil)

type MockAudit struct {
	Actions []string
	Actors  []string
	Meta    []map[string]interface{}
	Err     error
}

func (m *MockAudit) Log(action, actor string, metadata map[string]interface{}) error {
	m.Actions = append(m.Actions, action)
	m.Actors = append(m.Actors, actor)
	m.Meta = append(m.Meta, metadata)
	return m.Err
}

// ScriptedProvider answers completions from a queue of replies.
type ScriptedProvider struct {
	Replies []string
	Errs    []error
	Prompts []string
}

func (p *ScriptedProvider) ID() string { return "scripted" }

func (p *ScriptedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	n := len(p.Prompts)
	p.Prompts = append(p.Prompts, req.Prompt)
	if n < len(p.Errs) && p.Errs[n] != nil {
		return nil, p.Errs[n]
	}
	reply := `{"text":"fixed","confidence":0.5}`
	if n < len(p.Replies) {
		reply = p.Replies[n]
	}
	return &ai.CompletionResponse{Text: reply, Model: "scripted"}, nil
}
