package review

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
const (
	StateNotStarted           = "not_started"
	StateAnalyzing            = "analyzing"
	StateScored               = "scored"
	StateDecided              = "decided"
	StateRemediationRequested = "remediation_requested"
	StateDone                 = "done"
)

// Events accepted by the machine.
const (
	EventStart     = "start"
	EventScore     = "score"
	EventDecide    = "decide"
	EventFail      = "fail"
	EventRemediate = "remediate"
	EventFinish    = "finish"
)

// TransitionError reports an event the current state does not accept.
type TransitionError struct {
	Event string
	State string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not allowed in state %q", e.Event, e.State)
}

// ReviewContext carries the data guards need.
type ReviewContext struct {
	AssessmentID string
	HighRisk     func() bool
}

// Machine is the single-pass lifecycle of one assessment:
// not_started -> analyzing -> scored -> decided -> [remediation_requested] -> done.
// A failure while analyzing or scoring jumps straight to decided so the
// fail-safe verdict is still recorded.
type Machine struct {
	interpreter *statekit.Interpreter[ReviewContext]
	history     []string
}

// NewMachine builds a machine for one assessment. highRisk reports whether
// the compound detector flagged the document; remediation is only allowed
// when it returns true.
func NewMachine(assessmentID string, highRisk func() bool) (*Machine, error) {
	if highRisk == nil {
		highRisk = func() bool { return false }
	}

	builder := statekit.NewMachine[ReviewContext]("review-machine").
		WithInitial(statekit.StateID(StateNotStarted)).
		WithContext(ReviewContext{
			AssessmentID: assessmentID,
			HighRisk:     highRisk,
		}).
		WithGuard("highRisk", func(ctx ReviewContext, e statekit.Event) bool {
			return ctx.HighRisk()
		})

	builder.State(StateNotStarted).
		On(EventStart).Target(StateAnalyzing).
		Done()

	builder.State(StateAnalyzing).
		On(EventScore).Target(StateScored).
		On(EventFail).Target(StateDecided).
		Done()

	builder.State(StateScored).
		On(EventDecide).Target(StateDecided).
		On(EventFail).Target(StateDecided).
		Done()

	builder.State(StateDecided).
		On(EventRemediate).Target(StateRemediationRequested).Guard("highRisk").
		On(EventFinish).Target(StateDone).
		Done()

	builder.State(StateRemediationRequested).
		On(EventFinish).Target(StateDone).
		Done()

	builder.State(StateDone).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build review machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter, history: []string{StateNotStarted}}, nil
}

// Transition sends an event and returns a *TransitionError if the state did
// not change.
func (m *Machine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()
	if before == after {
		return &TransitionError{Event: event, State: before}
	}
	m.history = append(m.history, after)
	return nil
}

func (m *Machine) Current() string {
	return string(m.interpreter.State().Value)
}

// History returns every state visited, starting with not_started.
func (m *Machine) History() []string {
	out := make([]string, len(m.history))
	copy(out, m.history)
	return out
}

// IsDone returns true once the lifecycle has finished.
func (m *Machine) IsDone() bool {
	return m.Current() == StateDone
}
