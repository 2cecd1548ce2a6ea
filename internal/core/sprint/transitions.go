// Package sprint contains the pure business logic for sprint lifecycle
// transitions. This is part of the Functional Core - no I/O, only pure
// functions over the transition table.
package sprint

import "fmt"

// State represents the possible states of a sprint.
type State string

const (
	StatePlanning      State = "planning"
	StateActive        State = "active"
	StateReview        State = "review"
	StateRetrospective State = "retrospective"
	StateClosed        State = "closed"
)

// States lists all sprint states in lifecycle order.
var States = []State{StatePlanning, StateActive, StateReview, StateRetrospective, StateClosed}

// validTransitions is the directed edge set of the sprint lifecycle.
// review -> active is the reopen edge; closed is terminal.
var validTransitions = map[State][]State{
	StatePlanning:      {StateActive},
	StateActive:        {StateReview},
	StateReview:        {StateRetrospective, StateActive},
	StateRetrospective: {StateClosed},
	StateClosed:        {},
}

// IsValid reports whether s is a known sprint state.
func IsValid(s State) bool {
	_, ok := validTransitions[s]
	return ok
}

// IsValidTransition reports whether from -> to is an edge of the lifecycle.
// Pure predicate, usable standalone for UI gating.
func IsValidTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
func IsTerminal(s State) bool {
	return IsValid(s) && len(validTransitions[s]) == 0
}

// InitialState returns the state a freshly created sprint starts in.
func InitialState() State {
	return StatePlanning
}

// InvalidTransitionError reports a rejected sprint transition.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid sprint transition: %s -> %s", e.From, e.To)
}

// CheckTransition validates from -> to and returns an InvalidTransitionError
// if the edge does not exist.
func CheckTransition(from, to State) error {
	if !IsValidTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
