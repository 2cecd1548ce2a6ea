package primary

import (
	"context"

	"github.com/example/foreman/internal/core/escalation"
)

// Escalation is a notification raised when a work item is blocked or a
// delegation has exceeded its timeout. Unresolved means ResolvedAt is empty.
type Escalation struct {
	ID         string
	Trigger    escalation.Trigger
	Target     escalation.Target
	WorkItemID string
	SprintID   string
	AgentID    string // for timeout triggers: the delegate that timed out
	Message    string
	CreatedAt  string
	ResolvedAt string
	Resolution string
}

// RaiseEscalationRequest contains the parameters for raising an escalation.
type RaiseEscalationRequest struct {
	Trigger    escalation.Trigger
	Target     escalation.Target
	WorkItemID string
	SprintID   string
	AgentID    string
	Message    string
}

// EscalationFilters contains filter options for listing open escalations.
// TeamID filters through each escalation's sprint.
type EscalationFilters struct {
	SprintID string
	TeamID   string
}

// EscalationService defines the primary port for raising, listing, and
// resolving escalations, plus target resolution for the monitor.
type EscalationService interface {
	// RaiseEscalation persists a new unresolved escalation and delivers it
	// through the configured notifier. Delivery failure is logged, never
	// surfaced as a raise failure.
	RaiseEscalation(ctx context.Context, req RaiseEscalationRequest) (*Escalation, error)

	// ListOpenEscalations lists unresolved escalations with optional filters.
	ListOpenEscalations(ctx context.Context, filters EscalationFilters) ([]*Escalation, error)

	// ResolveEscalation stamps resolvedAt and the resolution text.
	ResolveEscalation(ctx context.Context, id, resolution string) (*Escalation, error)

	// ResolveTarget walks work item -> sprint -> team and applies the
	// fallback chain (explicit team target, first coordinator, none).
	// Returns (nil, nil) when nobody can be notified; that is a valid
	// steady state, not an error.
	ResolveTarget(ctx context.Context, item *WorkItem) (*escalation.Target, error)
}
