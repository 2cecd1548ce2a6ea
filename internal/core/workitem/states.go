// Package workitem contains the pure business logic for work item state and
// delegation outcome roll-up. No I/O, only pure functions.
package workitem

// State represents the possible states of a work item.
//
// Unlike sprints there is no enforced transition graph: the state setter is
// a primitive, and any stricter policy is a caller concern layered on top.
type State string

const (
	StateBacklog    State = "backlog"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateInReview   State = "in_review"
	StateBlocked    State = "blocked"
	StateDone       State = "done"
	StateDropped    State = "dropped"
)

// States lists all work item states.
var States = []State{
	StateBacklog, StateReady, StateInProgress, StateInReview,
	StateBlocked, StateDone, StateDropped,
}

// IsValid reports whether s is a known work item state.
func IsValid(s State) bool {
	for _, known := range States {
		if known == s {
			return true
		}
	}
	return false
}

// InitialState returns the state a freshly created work item starts in.
func InitialState() State {
	return StateBacklog
}

// DelegationStatus is the lifecycle status of a single delegation.
type DelegationStatus string

const (
	DelegationActive    DelegationStatus = "active"
	DelegationCompleted DelegationStatus = "completed"
	DelegationFailed    DelegationStatus = "failed"
)

// IsTerminalDelegation reports whether the status is a final outcome.
func IsTerminalDelegation(s DelegationStatus) bool {
	return s == DelegationCompleted || s == DelegationFailed
}
