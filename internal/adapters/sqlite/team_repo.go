package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/foreman/internal/ports/secondary"
)

// TeamRepository implements secondary.TeamRepository with SQLite.
type TeamRepository struct {
	db *sql.DB
}

// NewTeamRepository creates a new SQLite team repository.
func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create persists a new team with its initial members.
func (r *TeamRepository) Create(ctx context.Context, team *secondary.TeamRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var kind, agentID sql.NullString
	if team.EscalationKind != "" {
		kind = sql.NullString{String: team.EscalationKind, Valid: true}
		agentID = sql.NullString{String: team.EscalationAgentID, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO teams (id, organization_id, name, escalation_kind, escalation_agent_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		team.ID, team.OrganizationID, team.Name, kind, agentID, team.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	for _, m := range team.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, agent_id, role) VALUES (?, ?, ?)`,
			team.ID, m.AgentID, m.Role,
		)
		if err != nil {
			return fmt.Errorf("failed to add team member: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a team by its ID, including members.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*secondary.TeamRecord, error) {
	var kind, agentID sql.NullString
	record := &secondary.TeamRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, escalation_kind, escalation_agent_id, created_at FROM teams WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.OrganizationID, &record.Name, &kind, &agentID, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	record.EscalationKind = kind.String
	record.EscalationAgentID = agentID.String

	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Members = members
	return record, nil
}

// List retrieves teams matching the given filters, including members.
func (r *TeamRepository) List(ctx context.Context, filters secondary.TeamFilters) ([]*secondary.TeamRecord, error) {
	query := `SELECT id, organization_id, name, escalation_kind, escalation_agent_id, created_at FROM teams WHERE 1=1`
	args := []any{}

	if filters.OrganizationID != "" {
		query += " AND organization_id = ?"
		args = append(args, filters.OrganizationID)
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*secondary.TeamRecord
	for rows.Next() {
		var kind, agentID sql.NullString
		record := &secondary.TeamRecord{}
		if err := rows.Scan(&record.ID, &record.OrganizationID, &record.Name, &kind, &agentID, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		record.EscalationKind = kind.String
		record.EscalationAgentID = agentID.String
		teams = append(teams, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		members, err := r.loadMembers(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		team.Members = members
	}
	return teams, nil
}

// UpsertMember adds a member or replaces the role of an existing one.
func (r *TeamRepository) UpsertMember(ctx context.Context, teamID string, member secondary.TeamMemberRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, agent_id, role) VALUES (?, ?, ?)
		 ON CONFLICT(team_id, agent_id) DO UPDATE SET role = excluded.role`,
		teamID, member.AgentID, member.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team member: %w", err)
	}
	return nil
}

// SetEscalationTarget sets (or clears, with empty kind) the explicit team
// escalation target.
func (r *TeamRepository) SetEscalationTarget(ctx context.Context, teamID, kind, agentID string) error {
	var kindVal, agentVal sql.NullString
	if kind != "" {
		kindVal = sql.NullString{String: kind, Valid: true}
		agentVal = sql.NullString{String: agentID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET escalation_kind = ?, escalation_agent_id = ? WHERE id = ?`,
		kindVal, agentVal, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to set escalation target: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("team %s: %w", teamID, secondary.ErrNotFound)
	}
	return nil
}

// GetNextID returns the next available team ID.
func (r *TeamRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "teams", "TEAM")
}

func (r *TeamRepository) loadMembers(ctx context.Context, teamID string) ([]secondary.TeamMemberRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT agent_id, role FROM team_members WHERE team_id = ? ORDER BY rowid`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	defer rows.Close()

	var members []secondary.TeamMemberRecord
	for rows.Next() {
		var m secondary.TeamMemberRecord
		if err := rows.Scan(&m.AgentID, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Ensure TeamRepository implements the interface
var _ secondary.TeamRepository = (*TeamRepository)(nil)
