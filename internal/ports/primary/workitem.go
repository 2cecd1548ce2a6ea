package primary

import (
	"context"

	"github.com/example/foreman/internal/core/workitem"
)

// Delegation records one agent assigning a work item to another agent for a
// specific session. Entries are append-only: only status, completedAt, and
// outcome are ever rewritten, exactly once, on completion.
type Delegation struct {
	FromAgentID string
	ToAgentID   string
	DelegatedAt string // RFC3339
	SessionKey  string
	Isolated    bool
	Status      workitem.DelegationStatus
	CompletedAt string // empty until the delegation is finalized
	Outcome     string
}

// Review verdict values.
const (
	ReviewPending          = "pending"
	ReviewApproved         = "approved"
	ReviewChangesRequested = "changes_requested"
)

// Review is a review request against a work item and its eventual verdict.
type Review struct {
	ID              string
	ReviewerAgentID string
	Status          string // pending, approved, changes_requested
	Feedback        string
	RequestedAt     string
	DecidedAt       string
}

// WorkItem is a unit of work tracked independently of any single agent.
type WorkItem struct {
	ID                 string
	SprintID           string
	Title              string
	Description        string
	State              workitem.State
	AssigneeAgentID    string
	AcceptanceCriteria []string
	ExternalRefs       []string
	Delegations        []Delegation
	Reviews            []Review
	CreatedAt          string
	UpdatedAt          string
}

// CreateWorkItemRequest contains the parameters for creating a work item.
type CreateWorkItemRequest struct {
	SprintID           string
	Title              string
	Description        string
	AssigneeAgentID    string
	AcceptanceCriteria []string
	ExternalRefs       []string
}

// UpdateWorkItemPatch carries descriptive field updates. Empty fields are
// left unchanged. State and delegations are never touched through this path.
type UpdateWorkItemPatch struct {
	Title           string
	Description     string
	AssigneeAgentID string
}

// WorkItemFilters contains filter options for querying work items. When both
// are set they combine with AND semantics.
type WorkItemFilters struct {
	SprintID string
	State    workitem.State
}

// WorkItemService defines the primary port for work item operations.
type WorkItemService interface {
	// CreateWorkItem creates a work item in the backlog state under an
	// existing sprint.
	CreateWorkItem(ctx context.Context, req CreateWorkItemRequest) (*WorkItem, error)

	// GetWorkItem retrieves a work item by ID, including its delegations
	// and reviews.
	GetWorkItem(ctx context.Context, id string) (*WorkItem, error)

	// UpdateWorkItem merges descriptive fields into the stored item.
	UpdateWorkItem(ctx context.Context, id string, patch UpdateWorkItemPatch) (*WorkItem, error)

	// UpdateWorkItemState sets the state unconditionally. This is the
	// primitive used by callers and by the delegation manager; any stricter
	// transition policy is a caller concern.
	UpdateWorkItemState(ctx context.Context, id string, state workitem.State) (*WorkItem, error)

	// ListWorkItems lists work items with optional filters.
	ListWorkItems(ctx context.Context, filters WorkItemFilters) ([]*WorkItem, error)

	// FindByExternalRef returns the first work item whose externalRefs
	// contains ref by exact match, or (nil, nil) when none does.
	FindByExternalRef(ctx context.Context, ref string) (*WorkItem, error)
}
