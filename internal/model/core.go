package model

import (
	"fmt"
	"time"
)

// RunState is the orchestrator state of a single pipeline run
type RunState string

const (
	StateIdle       RunState = "idle"
	StateFetched    RunState = "fetched"
	StatePersisted  RunState = "persisted"
	StateReconciled RunState = "reconciled"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s RunState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// next is the only forward transition allowed from each non-terminal state.
var next = map[RunState]RunState{
	StateIdle:       StateFetched,
	StateFetched:    StatePersisted,
	StatePersisted:  StateReconciled,
	StateReconciled: StateDone,
}

// CanTransition reports whether from -> to is allowed. Failed is reachable
// from every non-terminal state.
func CanTransition(from, to RunState) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return next[from] == to
}

// CheckTransition returns an error describing a disallowed transition.
func CheckTransition(from, to RunState) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return nil
}

// RunReport is what a finished run emits
type RunReport struct {
	RunID      string            `json:"run_id"`
	State      RunState          `json:"state"`
	Results    []AggregateResult `json:"results"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Result returns the sum reported by method, if present.
func (r *RunReport) Result(m Method) (int64, bool) {
	for _, res := range r.Results {
		if res.Method == m {
			return res.Sum, true
		}
	}
	return 0, false
}

// Consistent reports whether all three methods produced the same sum.
func (r *RunReport) Consistent() bool {
	if len(r.Results) != len(Methods) {
		return false
	}
	for _, res := range r.Results[1:] {
		if res.Sum != r.Results[0].Sum {
			return false
		}
	}
	return true
}
