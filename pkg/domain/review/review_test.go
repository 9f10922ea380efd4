package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

func TestDecisionFor(t *testing.T) {
	tests := []struct {
		score float64
		want  risk.Decision
	}{
		{0, risk.DecisionAutoApprove},
		{0.2, risk.DecisionAutoApprove},
		{0.2001, risk.DecisionManualReview},
		{0.5, risk.DecisionManualReview},
		{0.7, risk.DecisionRequiresChanges},
		{0.78, risk.DecisionAutoBlock},
		{0.85, risk.DecisionAutoBlock},
		{0.86, risk.DecisionCriticalBlock},
		{1, risk.DecisionCriticalBlock},
	}
	for _, tt := range tests {
		if got := DecisionFor(tt.score); got != tt.want {
			t.Errorf("DecisionFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		spread   float64
		degraded bool
		want     float64
	}{
		{"convergent", 0.2, false, 0.9},
		{"exactly at limit", 0.5, false, 0.9},
		{"disagreeing", 0.85, false, 0.8},
		{"degraded", 0.1, true, 0.85},
		{"both", 0.9, true, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.spread, tt.degraded); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func newMachine(t *testing.T, high bool) *Machine {
	t.Helper()
	m, err := NewMachine("a-1", func() bool { return high })
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func send(t *testing.T, m *Machine, events ...string) {
	t.Helper()
	for _, e := range events {
		if err := m.Transition(e); err != nil {
			t.Fatalf("Transition(%s): %v", e, err)
		}
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m := newMachine(t, false)
	if m.Current() != StateNotStarted {
		t.Fatalf("expected not_started, got %s", m.Current())
	}
	send(t, m, EventStart, EventScore, EventDecide, EventFinish)
	if !m.IsDone() {
		t.Errorf("expected done, got %s", m.Current())
	}
	got := strings.Join(m.History(), ",")
	if got != "not_started,analyzing,scored,decided,done" {
		t.Errorf("unexpected history %s", got)
	}
}

func TestMachine_RemediationRequiresHighRisk(t *testing.T) {
	m := newMachine(t, false)
	send(t, m, EventStart, EventScore, EventDecide)
	err := m.Transition(EventRemediate)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.State != StateDecided || te.Event != EventRemediate {
		t.Errorf("unexpected error fields %+v", te)
	}

	m = newMachine(t, true)
	send(t, m, EventStart, EventScore, EventDecide, EventRemediate, EventFinish)
	got := strings.Join(m.History(), ",")
	if got != "not_started,analyzing,scored,decided,remediation_requested,done" {
		t.Errorf("unexpected history %s", got)
	}
}

func TestMachine_FailJumpsToDecided(t *testing.T) {
	m := newMachine(t, true)
	send(t, m, EventStart, EventFail)
	if m.Current() != StateDecided {
		t.Fatalf("expected decided, got %s", m.Current())
	}

	m = newMachine(t, true)
	send(t, m, EventStart, EventScore, EventFail)
	if m.Current() != StateDecided {
		t.Errorf("expected decided after scoring failure, got %s", m.Current())
	}
}

func TestMachine_IsSinglePass(t *testing.T) {
	m := newMachine(t, true)
	if err := m.Transition(EventScore); err == nil {
		t.Error("expected score before start to fail")
	}
	send(t, m, EventStart, EventScore, EventDecide, EventFinish)
	for _, e := range []string{EventStart, EventScore, EventDecide, EventFail, EventRemediate, EventFinish} {
		if err := m.Transition(e); err == nil {
			t.Errorf("expected %s after done to fail", e)
		}
	}
	if len(m.History()) != 5 {
		t.Errorf("rejected events must not extend history: %v", m.History())
	}
}
