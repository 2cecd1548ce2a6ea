// Package secondary defines the secondary ports (driven adapters) for the
// application: the repository interfaces through which the engine reads and
// writes durable state, and the notifier through which escalations are
// delivered.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by repositories when an entity does not exist.
// Services translate it into the primary port's NotFoundError.
var ErrNotFound = errors.New("not found")

// OrganizationRepository defines the secondary port for organization
// persistence.
type OrganizationRepository interface {
	// Create persists a new organization.
	Create(ctx context.Context, org *OrganizationRecord) error

	// GetByID retrieves an organization by its ID.
	GetByID(ctx context.Context, id string) (*OrganizationRecord, error)

	// List retrieves all organizations.
	List(ctx context.Context) ([]*OrganizationRecord, error)

	// GetNextID returns the next available organization ID.
	GetNextID(ctx context.Context) (string, error)
}

// OrganizationRecord represents an organization as stored in persistence.
type OrganizationRecord struct {
	ID        string
	Name      string
	CreatedAt string
}

// TeamRepository defines the secondary port for team persistence.
type TeamRepository interface {
	// Create persists a new team with its initial members.
	Create(ctx context.Context, team *TeamRecord) error

	// GetByID retrieves a team by its ID, including members.
	GetByID(ctx context.Context, id string) (*TeamRecord, error)

	// List retrieves teams matching the given filters, including members.
	List(ctx context.Context, filters TeamFilters) ([]*TeamRecord, error)

	// UpsertMember adds a member or replaces the role of an existing one.
	UpsertMember(ctx context.Context, teamID string, member TeamMemberRecord) error

	// SetEscalationTarget sets (or clears, with empty kind) the explicit
	// team escalation target.
	SetEscalationTarget(ctx context.Context, teamID, kind, agentID string) error

	// GetNextID returns the next available team ID.
	GetNextID(ctx context.Context) (string, error)
}

// TeamRecord represents a team as stored in persistence.
type TeamRecord struct {
	ID                string
	OrganizationID    string
	Name              string
	Members           []TeamMemberRecord
	EscalationKind    string // empty means no explicit target
	EscalationAgentID string
	CreatedAt         string
}

// TeamMemberRecord represents a team membership row.
type TeamMemberRecord struct {
	AgentID string
	Role    string
}

// TeamFilters contains filter options for querying teams.
type TeamFilters struct {
	OrganizationID string
}

// SprintRepository defines the secondary port for sprint persistence.
type SprintRepository interface {
	// Create persists a new sprint.
	Create(ctx context.Context, sprint *SprintRecord) error

	// GetByID retrieves a sprint by its ID.
	GetByID(ctx context.Context, id string) (*SprintRecord, error)

	// List retrieves sprints matching the given filters.
	List(ctx context.Context, filters SprintFilters) ([]*SprintRecord, error)

	// UpdateState sets the sprint state.
	UpdateState(ctx context.Context, id, state string) error

	// GetNextID returns the next available sprint ID.
	GetNextID(ctx context.Context) (string, error)
}

// SprintRecord represents a sprint as stored in persistence.
type SprintRecord struct {
	ID        string
	TeamID    string
	Name      string
	State     string
	CreatedAt string
	UpdatedAt string
}

// SprintFilters contains filter options for querying sprints.
type SprintFilters struct {
	TeamID string
	State  string
}

// WorkItemRepository defines the secondary port for work item persistence.
// Reads return items with their delegation and review children loaded.
type WorkItemRepository interface {
	// Create persists a new work item.
	Create(ctx context.Context, item *WorkItemRecord) error

	// GetByID retrieves a work item by its ID.
	GetByID(ctx context.Context, id string) (*WorkItemRecord, error)

	// Update merges descriptive fields (title, description, assignee) into
	// the stored item. Empty fields are left unchanged.
	Update(ctx context.Context, item *WorkItemRecord) error

	// UpdateState sets the work item state unconditionally.
	UpdateState(ctx context.Context, id, state string) error

	// List retrieves work items matching the given filters (AND semantics).
	List(ctx context.Context, filters WorkItemFilters) ([]*WorkItemRecord, error)

	// ListIDsBySprint returns the IDs of the sprint's work items in
	// creation order.
	ListIDsBySprint(ctx context.Context, sprintID string) ([]string, error)

	// AppendDelegation appends a delegation row to the work item.
	AppendDelegation(ctx context.Context, workItemID string, d *DelegationRecord) error

	// CompleteDelegation finalizes the single active delegation matching
	// sessionKey on the work item. Returns ErrNotFound (wrapped) when no
	// active delegation carries the key.
	CompleteDelegation(ctx context.Context, workItemID, sessionKey, status, completedAt, outcome string) error

	// AppendReview appends a review row to the work item.
	AppendReview(ctx context.Context, workItemID string, r *ReviewRecord) error

	// UpdateReview stamps a review's status, feedback, and decision time.
	UpdateReview(ctx context.Context, reviewID, status, feedback, decidedAt string) error

	// SprintExists checks if a sprint exists (for referential integrity).
	SprintExists(ctx context.Context, sprintID string) (bool, error)

	// GetNextID returns the next available work item ID.
	GetNextID(ctx context.Context) (string, error)

	// GetNextReviewID returns the next available review ID.
	GetNextReviewID(ctx context.Context) (string, error)
}

// WorkItemRecord represents a work item as stored in persistence.
type WorkItemRecord struct {
	ID                 string
	SprintID           string
	Title              string
	Description        string
	State              string
	AssigneeAgentID    string // empty string means null
	AcceptanceCriteria []string
	ExternalRefs       []string
	Delegations        []DelegationRecord
	Reviews            []ReviewRecord
	CreatedAt          string
	UpdatedAt          string
}

// DelegationRecord represents a delegation row. Rows are append-only; only
// Status, CompletedAt, and Outcome are ever updated, once, on completion.
type DelegationRecord struct {
	FromAgentID string
	ToAgentID   string
	DelegatedAt string
	SessionKey  string
	Isolated    bool
	Status      string // active, completed, failed
	CompletedAt string // empty string means null
	Outcome     string
}

// ReviewRecord represents a review row.
type ReviewRecord struct {
	ID              string
	WorkItemID      string
	ReviewerAgentID string
	Status          string
	Feedback        string
	RequestedAt     string
	DecidedAt       string // empty string means null
}

// WorkItemFilters contains filter options for querying work items.
type WorkItemFilters struct {
	SprintID string
	State    string
}

// EscalationRepository defines the secondary port for escalation
// persistence.
type EscalationRepository interface {
	// Create persists a new (unresolved) escalation.
	Create(ctx context.Context, e *EscalationRecord) error

	// GetByID retrieves an escalation by its ID.
	GetByID(ctx context.Context, id string) (*EscalationRecord, error)

	// ListOpen retrieves unresolved escalations, optionally filtered by
	// sprint.
	ListOpen(ctx context.Context, filters EscalationFilters) ([]*EscalationRecord, error)

	// Resolve stamps resolved_at and the resolution text.
	Resolve(ctx context.Context, id, resolution, resolvedAt string) error

	// GetNextID returns the next available escalation ID.
	GetNextID(ctx context.Context) (string, error)
}

// EscalationRecord represents an escalation as stored in persistence.
type EscalationRecord struct {
	ID            string
	Trigger       string // blocked, timeout
	TargetKind    string
	TargetAgentID string
	WorkItemID    string
	SprintID      string
	AgentID       string // empty string means null
	Message       string
	CreatedAt     string
	ResolvedAt    string // empty string means null (unresolved)
	Resolution    string
}

// EscalationFilters contains filter options for querying escalations.
type EscalationFilters struct {
	SprintID string
}
