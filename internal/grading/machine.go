package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vytor/codedrill/internal/models"
)

// ErrSubmitInProgress is returned when a workspace is already being graded.
var ErrSubmitInProgress = errors.New("grading: submission already in progress")

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Snapshot is a point-in-time view of a workspace.
type Snapshot struct {
	State  State   `json:"state"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Machine holds the submission state of one (user, problem) workspace:
// idle -> submitting -> success|error. Reset returns a terminal state to
// idle; the next Submit moves it straight to submitting.
type Machine struct {
	mu     sync.Mutex
	state  State
	result *Result
	err    string
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// Submit grades code and blocks until the machine reaches a terminal state.
// A grader failure, including cancellation, ends in StateError.
func (m *Machine) Submit(ctx context.Context, g Grader, problem models.Problem, code string) (Result, error) {
	m.mu.Lock()
	if m.state == StateSubmitting {
		m.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	}
	// Leaving a terminal state drops its result; no snapshot ever pairs
	// StateSubmitting with a stale result or error.
	m.state, m.result, m.err = StateSubmitting, nil, ""
	m.mu.Unlock()

	res, err := g.Grade(ctx, problem, code)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateError
		m.err = err.Error()
		return Result{}, fmt.Errorf("grade problem %d: %w", problem.ID, err)
	}
	m.result = &res
	if res.Accepted() {
		m.state = StateSuccess
	} else {
		m.state = StateError
	}
	return res, nil
}

// Reset returns a finished workspace to idle.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	m.state, m.result, m.err = StateIdle, nil, ""
	return nil
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{State: m.state, Error: m.err}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	return s
}

type workspaceKey struct {
	userID    string
	problemID int64
}

// Workspaces lazily creates one Machine per (user, problem).
type Workspaces struct {
	mu       sync.Mutex
	machines map[workspaceKey]*Machine
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{machines: make(map[workspaceKey]*Machine)}
}

func (w *Workspaces) Machine(userID string, problemID int64) *Machine {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := workspaceKey{userID: userID, problemID: problemID}
	m, ok := w.machines[k]
	if !ok {
		m = NewMachine()
		w.machines[k] = m
	}
	return m
}

// Peek returns the workspace snapshot without creating a machine.
func (w *Workspaces) Peek(userID string, problemID int64) Snapshot {
	w.mu.Lock()
	m, ok := w.machines[workspaceKey{userID: userID, problemID: problemID}]
	w.mu.Unlock()
	if !ok {
		return Snapshot{State: StateIdle}
	}
	return m.Snapshot()
}
