// Package sqlite contains SQLite implementations of the repository
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/foreman/internal/ports/secondary"
)

// OrganizationRepository implements secondary.OrganizationRepository with
// SQLite.
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new SQLite organization repository.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create persists a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *secondary.OrganizationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)`,
		org.ID, org.Name, org.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by its ID.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*secondary.OrganizationRecord, error) {
	record := &secondary.OrganizationRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.Name, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return record, nil
}

// List retrieves all organizations.
func (r *OrganizationRepository) List(ctx context.Context) ([]*secondary.OrganizationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*secondary.OrganizationRecord
	for rows.Next() {
		record := &secondary.OrganizationRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, record)
	}
	return orgs, rows.Err()
}

// GetNextID returns the next available organization ID.
func (r *OrganizationRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "organizations", "ORG")
}

// nextID computes the next sequential prefixed ID for a table whose IDs look
// like PREFIX-001.
func nextID(ctx context.Context, db *sql.DB, table, prefix string) (string, error) {
	var maxID int
	prefixLen := len(prefix) + 2
	err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", prefixLen, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", table, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}

// Ensure OrganizationRepository implements the interface
var _ secondary.OrganizationRepository = (*OrganizationRepository)(nil)
