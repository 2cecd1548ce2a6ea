package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/foreman/internal/ports/secondary"
)

// EscalationRepository implements secondary.EscalationRepository with SQLite.
type EscalationRepository struct {
	db *sql.DB
}

// NewEscalationRepository creates a new SQLite escalation repository.
func NewEscalationRepository(db *sql.DB) *EscalationRepository {
	return &EscalationRepository{db: db}
}

// Create persists a new escalation.
func (r *EscalationRepository) Create(ctx context.Context, e *secondary.EscalationRecord) error {
	var agentID sql.NullString
	if e.AgentID != "" {
		agentID = sql.NullString{String: e.AgentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO escalations (id, "trigger", target_kind, target_agent_id, work_item_id, sprint_id, agent_id, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Trigger, e.TargetKind, e.TargetAgentID, e.WorkItemID, e.SprintID, agentID, e.Message, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create escalation: %w", err)
	}
	return nil
}

// GetByID retrieves an escalation by its ID.
func (r *EscalationRepository) GetByID(ctx context.Context, id string) (*secondary.EscalationRecord, error) {
	record, err := r.scanEscalation(r.db.QueryRowContext(ctx,
		`SELECT id, "trigger", target_kind, target_agent_id, work_item_id, sprint_id, agent_id, message, created_at, resolved_at, resolution
		 FROM escalations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("escalation %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}
	return record, nil
}

// ListOpen retrieves unresolved escalations, optionally filtered by sprint.
func (r *EscalationRepository) ListOpen(ctx context.Context, filters secondary.EscalationFilters) ([]*secondary.EscalationRecord, error) {
	query := `SELECT id, "trigger", target_kind, target_agent_id, work_item_id, sprint_id, agent_id, message, created_at, resolved_at, resolution
	          FROM escalations WHERE resolved_at IS NULL`
	args := []any{}

	if filters.SprintID != "" {
		query += " AND sprint_id = ?"
		args = append(args, filters.SprintID)
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	var escalations []*secondary.EscalationRecord
	for rows.Next() {
		record, err := r.scanEscalation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		escalations = append(escalations, record)
	}
	return escalations, rows.Err()
}

// Resolve stamps resolved_at and the resolution text.
func (r *EscalationRepository) Resolve(ctx context.Context, id, resolution, resolvedAt string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escalations SET resolved_at = ?, resolution = ? WHERE id = ?`,
		resolvedAt, resolution, id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve escalation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("escalation %s: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// GetNextID returns the next available escalation ID.
func (r *EscalationRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "escalations", "ESC")
}

func (r *EscalationRepository) scanEscalation(row scanner) (*secondary.EscalationRecord, error) {
	var (
		agentID    sql.NullString
		message    sql.NullString
		resolvedAt sql.NullString
		resolution sql.NullString
	)

	record := &secondary.EscalationRecord{}
	err := row.Scan(&record.ID, &record.Trigger, &record.TargetKind, &record.TargetAgentID,
		&record.WorkItemID, &record.SprintID, &agentID, &message, &record.CreatedAt,
		&resolvedAt, &resolution)
	if err != nil {
		return nil, err
	}
	record.AgentID = agentID.String
	record.Message = message.String
	record.ResolvedAt = resolvedAt.String
	record.Resolution = resolution.String
	return record, nil
}

// Ensure EscalationRepository implements the interface
var _ secondary.EscalationRepository = (*EscalationRepository)(nil)
