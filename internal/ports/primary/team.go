package primary

import (
	"context"

	"github.com/example/foreman/internal/core/escalation"
)

// TeamMember is an agent's membership in a team.
type TeamMember struct {
	AgentID string
	Role    string // "coordinator" or "member"
}

// Team groups agents and owns sprints. Read-only from the orchestration
// engine's perspective apart from membership administration.
type Team struct {
	ID               string
	OrganizationID   string
	Name             string
	Members          []TeamMember
	EscalationTarget *escalation.Target // nil when no explicit target configured
	CreatedAt        string
}

// CreateTeamRequest contains the parameters for creating a team.
type CreateTeamRequest struct {
	OrganizationID string
	Name           string
	Members        []TeamMember
}

// TeamFilters contains filter options for querying teams.
type TeamFilters struct {
	OrganizationID string
}

// TeamService defines the primary port for team operations.
type TeamService interface {
	// CreateTeam creates a new team under an organization.
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error)

	// GetTeam retrieves a team by ID.
	GetTeam(ctx context.Context, id string) (*Team, error)

	// ListTeams lists teams with optional filters.
	ListTeams(ctx context.Context, filters TeamFilters) ([]*Team, error)

	// AddMember adds an agent to a team, replacing the role if the agent is
	// already a member. Returns the updated team.
	AddMember(ctx context.Context, teamID string, member TeamMember) (*Team, error)

	// ListMembers lists the members of a team.
	ListMembers(ctx context.Context, teamID string) ([]TeamMember, error)

	// SetEscalationTarget sets or clears the explicit team escalation target.
	SetEscalationTarget(ctx context.Context, teamID string, target *escalation.Target) (*Team, error)
}
