package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/foreman/internal/ports/secondary"
)

// SprintRepository implements secondary.SprintRepository with SQLite.
type SprintRepository struct {
	db *sql.DB
}

// NewSprintRepository creates a new SQLite sprint repository.
func NewSprintRepository(db *sql.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create persists a new sprint.
func (r *SprintRepository) Create(ctx context.Context, sprint *secondary.SprintRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sprints (id, team_id, name, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sprint.ID, sprint.TeamID, sprint.Name, sprint.State, sprint.CreatedAt, sprint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sprint: %w", err)
	}
	return nil
}

// GetByID retrieves a sprint by its ID.
func (r *SprintRepository) GetByID(ctx context.Context, id string) (*secondary.SprintRecord, error) {
	record := &secondary.SprintRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, team_id, name, state, created_at, updated_at FROM sprints WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.TeamID, &record.Name, &record.State, &record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sprint %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}
	return record, nil
}

// List retrieves sprints matching the given filters.
func (r *SprintRepository) List(ctx context.Context, filters secondary.SprintFilters) ([]*secondary.SprintRecord, error) {
	query := `SELECT id, team_id, name, state, created_at, updated_at FROM sprints WHERE 1=1`
	args := []any{}

	if filters.TeamID != "" {
		query += " AND team_id = ?"
		args = append(args, filters.TeamID)
	}
	if filters.State != "" {
		query += " AND state = ?"
		args = append(args, filters.State)
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	defer rows.Close()

	var sprints []*secondary.SprintRecord
	for rows.Next() {
		record := &secondary.SprintRecord{}
		if err := rows.Scan(&record.ID, &record.TeamID, &record.Name, &record.State, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		sprints = append(sprints, record)
	}
	return sprints, rows.Err()
}

// UpdateState sets the sprint state.
func (r *SprintRepository) UpdateState(ctx context.Context, id, state string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sprints SET state = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = ?`,
		state, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update sprint state: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("sprint %s: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// GetNextID returns the next available sprint ID.
func (r *SprintRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "sprints", "SPR")
}

// Ensure SprintRepository implements the interface
var _ secondary.SprintRepository = (*SprintRepository)(nil)
