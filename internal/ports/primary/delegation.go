package primary

import (
	"context"

	"github.com/example/foreman/internal/core/workitem"
)

// AddDelegationRequest contains the parameters for recording a delegation.
type AddDelegationRequest struct {
	WorkItemID  string
	FromAgentID string
	ToAgentID   string
	DelegatedAt string // RFC3339; stored verbatim
	SessionKey  string
	Isolated    bool
}

// DelegationMatch pairs a delegation with the work item that carries it.
type DelegationMatch struct {
	WorkItemID string
	Delegation *Delegation
}

// DelegationService defines the primary port for the delegation manager:
// recording delegations and reconciling their outcomes back into work item
// state.
type DelegationService interface {
	// AddDelegation appends an active delegation to the work item and moves
	// the item to in_progress unconditionally, even when it was already past
	// that state. Current policy, not a guarded transition.
	AddDelegation(ctx context.Context, req AddDelegationRequest) (*Delegation, error)

	// CompleteDelegation finalizes the active delegation matching sessionKey
	// on the given work item and rolls the outcome up into the item's state:
	// completed with no remaining active delegations -> in_review; failed ->
	// blocked unconditionally. The match is strictly by session key; a
	// NotFoundError is returned when no active delegation carries it.
	CompleteDelegation(ctx context.Context, workItemID, sessionKey string, outcome workitem.DelegationStatus, outcomeText string) (*Delegation, error)

	// FindActiveBySessionKey scans all work items for an active delegation
	// with the given session key. Returns (nil, nil) when none matches;
	// completed or failed delegations are never matched.
	FindActiveBySessionKey(ctx context.Context, sessionKey string) (*DelegationMatch, error)

	// CompleteBySessionKey is the session-ended hook: reverse-looks-up the
	// active delegation for sessionKey and completes it with an outcome
	// derived from ok/reason. Returns (nil, nil) when no active delegation
	// carries the key.
	CompleteBySessionKey(ctx context.Context, sessionKey string, ok bool, reason string) (*DelegationMatch, error)
}
