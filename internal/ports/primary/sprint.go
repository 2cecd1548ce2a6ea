package primary

import (
	"context"

	"github.com/example/foreman/internal/core/sprint"
	"github.com/example/foreman/internal/core/workitem"
)

// Sprint is a time-boxed container of work items with a five-state
// lifecycle. WorkItemIDs is derived from item ownership and is append-only
// from this engine's side.
type Sprint struct {
	ID          string
	TeamID      string
	Name        string
	State       sprint.State
	WorkItemIDs []string
	CreatedAt   string
	UpdatedAt   string
}

// SprintReport aggregates the work items of a sprint by state.
type SprintReport struct {
	SprintID       string
	Name           string
	State          sprint.State
	TotalItems     int
	WorkItemCounts map[workitem.State]int
}

// CreateSprintRequest contains the parameters for creating a sprint.
type CreateSprintRequest struct {
	TeamID string
	Name   string
}

// SprintFilters contains filter options for querying sprints.
type SprintFilters struct {
	TeamID string
	State  sprint.State
}

// SprintService defines the primary port for sprint operations.
type SprintService interface {
	// CreateSprint creates a sprint in the planning state.
	CreateSprint(ctx context.Context, req CreateSprintRequest) (*Sprint, error)

	// GetSprint retrieves a sprint by ID.
	GetSprint(ctx context.Context, id string) (*Sprint, error)

	// ListSprints lists sprints with optional filters.
	ListSprints(ctx context.Context, filters SprintFilters) ([]*Sprint, error)

	// TransitionSprint validates and applies a lifecycle transition.
	// Fails with NotFoundError for an unknown sprint and with
	// sprint.InvalidTransitionError for an edge not in the table.
	TransitionSprint(ctx context.Context, id string, to sprint.State) (*Sprint, error)

	// GetSprintReport tallies the sprint's work items by state.
	GetSprintReport(ctx context.Context, id string) (*SprintReport, error)
}
