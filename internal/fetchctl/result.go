// Package fetchctl coordinates a single in-flight request per view. Starting
// a new request cancels the previous one, and results that arrive for a
// superseded request are dropped.
package fetchctl

import "time"

// Outcome tags a Result.
type Outcome int

// Result outcomes.
const (
	OutcomeOk Outcome = iota + 1
	OutcomeError
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeError:
		return "error"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Result is the outcome of one triggered fetch. Data and RetrievedAt are set
// for OutcomeOk, Message for OutcomeError.
type Result[T any] struct {
	Outcome     Outcome
	Data        T
	RetrievedAt time.Time
	Message     string
}

// Phase is the controller's lifecycle position.
type Phase int

// Controller phases.
const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseApplied
	PhaseErrored
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseApplied:
		return "applied"
	case PhaseErrored:
		return "errored"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// State is what a view displays. Loading is true exactly while Phase is
// PhaseFetching.
type State[T any] struct {
	Phase       Phase
	Key         string
	Loading     bool
	Data        T
	HasData     bool
	Err         string
	RetrievedAt time.Time
}
