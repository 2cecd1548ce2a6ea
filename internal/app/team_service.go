package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/foreman/internal/core/escalation"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// TeamServiceImpl implements the TeamService interface.
type TeamServiceImpl struct {
	teamRepo secondary.TeamRepository
	orgRepo  secondary.OrganizationRepository
	now      func() time.Time
}

// NewTeamService creates a new TeamService with injected dependencies.
func NewTeamService(teamRepo secondary.TeamRepository, orgRepo secondary.OrganizationRepository) *TeamServiceImpl {
	return &TeamServiceImpl{teamRepo: teamRepo, orgRepo: orgRepo, now: time.Now}
}

// CreateTeam creates a new team under an organization.
func (s *TeamServiceImpl) CreateTeam(ctx context.Context, req primary.CreateTeamRequest) (*primary.Team, error) {
	if req.Name == "" || req.OrganizationID == "" {
		return nil, fmt.Errorf("team name and organization ID required")
	}

	if _, err := s.orgRepo.GetByID(ctx, req.OrganizationID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("organization", req.OrganizationID)
		}
		return nil, fmt.Errorf("failed to validate organization: %w", err)
	}

	id, err := s.teamRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate team ID: %w", err)
	}

	members := make([]secondary.TeamMemberRecord, len(req.Members))
	for i, m := range req.Members {
		members[i] = secondary.TeamMemberRecord{AgentID: m.AgentID, Role: m.Role}
	}

	record := &secondary.TeamRecord{
		ID:             id,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Members:        members,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := s.teamRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return recordToTeam(record), nil
}

// GetTeam retrieves a team by ID.
func (s *TeamServiceImpl) GetTeam(ctx context.Context, id string) (*primary.Team, error) {
	record, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("team", id)
		}
		return nil, err
	}
	return recordToTeam(record), nil
}

// ListTeams lists teams with optional filters.
func (s *TeamServiceImpl) ListTeams(ctx context.Context, filters primary.TeamFilters) ([]*primary.Team, error) {
	records, err := s.teamRepo.List(ctx, secondary.TeamFilters{
		OrganizationID: filters.OrganizationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]*primary.Team, len(records))
	for i, r := range records {
		teams[i] = recordToTeam(r)
	}
	return teams, nil
}

// AddMember adds an agent to a team, replacing the role if the agent is
// already a member.
func (s *TeamServiceImpl) AddMember(ctx context.Context, teamID string, member primary.TeamMember) (*primary.Team, error) {
	if member.AgentID == "" || member.Role == "" {
		return nil, fmt.Errorf("agent ID and role required")
	}

	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("team", teamID)
		}
		return nil, err
	}

	if err := s.teamRepo.UpsertMember(ctx, teamID, secondary.TeamMemberRecord{
		AgentID: member.AgentID,
		Role:    member.Role,
	}); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.GetTeam(ctx, teamID)
}

// ListMembers lists the members of a team.
func (s *TeamServiceImpl) ListMembers(ctx context.Context, teamID string) ([]primary.TeamMember, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return team.Members, nil
}

// SetEscalationTarget sets or clears the explicit team escalation target.
func (s *TeamServiceImpl) SetEscalationTarget(ctx context.Context, teamID string, target *escalation.Target) (*primary.Team, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("team", teamID)
		}
		return nil, err
	}

	var kind, agentID string
	if target != nil {
		kind = string(target.Kind)
		agentID = target.AgentID
	}
	if err := s.teamRepo.SetEscalationTarget(ctx, teamID, kind, agentID); err != nil {
		return nil, fmt.Errorf("failed to set escalation target: %w", err)
	}

	return s.GetTeam(ctx, teamID)
}

func recordToTeam(r *secondary.TeamRecord) *primary.Team {
	members := make([]primary.TeamMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = primary.TeamMember{AgentID: m.AgentID, Role: m.Role}
	}

	var target *escalation.Target
	if r.EscalationKind != "" {
		target = &escalation.Target{
			Kind:    escalation.TargetKind(r.EscalationKind),
			AgentID: r.EscalationAgentID,
		}
	}

	return &primary.Team{
		ID:               r.ID,
		OrganizationID:   r.OrganizationID,
		Name:             r.Name,
		Members:          members,
		EscalationTarget: target,
		CreatedAt:        r.CreatedAt,
	}
}

// Ensure TeamServiceImpl implements the interface
var _ primary.TeamService = (*TeamServiceImpl)(nil)
