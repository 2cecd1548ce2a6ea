package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/foreman/internal/ports/secondary"
)

// WorkItemRepository implements secondary.WorkItemRepository with SQLite.
// Acceptance criteria and external refs are stored as JSON arrays;
// delegations and reviews live in child tables and are loaded on every read.
type WorkItemRepository struct {
	db *sql.DB
}

// NewWorkItemRepository creates a new SQLite work item repository.
func NewWorkItemRepository(db *sql.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// Create persists a new work item.
func (r *WorkItemRepository) Create(ctx context.Context, item *secondary.WorkItemRecord) error {
	criteria, err := marshalStrings(item.AcceptanceCriteria)
	if err != nil {
		return fmt.Errorf("failed to encode acceptance criteria: %w", err)
	}
	refs, err := marshalStrings(item.ExternalRefs)
	if err != nil {
		return fmt.Errorf("failed to encode external refs: %w", err)
	}

	var assignee sql.NullString
	if item.AssigneeAgentID != "" {
		assignee = sql.NullString{String: item.AssigneeAgentID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO work_items (id, sprint_id, title, description, state, assignee_agent_id, acceptance_criteria, external_refs, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SprintID, item.Title, item.Description, item.State,
		assignee, criteria, refs, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create work item: %w", err)
	}
	return nil
}

// GetByID retrieves a work item by its ID.
func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*secondary.WorkItemRecord, error) {
	record, err := r.scanItem(r.db.QueryRowContext(ctx,
		`SELECT id, sprint_id, title, description, state, assignee_agent_id, acceptance_criteria, external_refs, created_at, updated_at
		 FROM work_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work item %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}

	if err := r.loadChildren(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update merges descriptive fields into the stored item. Empty fields are
// left unchanged.
func (r *WorkItemRepository) Update(ctx context.Context, item *secondary.WorkItemRecord) error {
	setClauses := []string{}
	args := []any{}

	if item.Title != "" {
		setClauses = append(setClauses, "title = ?")
		args = append(args, item.Title)
	}
	if item.Description != "" {
		setClauses = append(setClauses, "description = ?")
		args = append(args, item.Description)
	}
	if item.AssigneeAgentID != "" {
		setClauses = append(setClauses, "assignee_agent_id = ?")
		args = append(args, item.AssigneeAgentID)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')")

	query := "UPDATE work_items SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	args = append(args, item.ID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update work item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("work item %s: %w", item.ID, secondary.ErrNotFound)
	}
	return nil
}

// UpdateState sets the work item state unconditionally.
func (r *WorkItemRepository) UpdateState(ctx context.Context, id, state string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE work_items SET state = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = ?`,
		state, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item state: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("work item %s: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// List retrieves work items matching the given filters.
func (r *WorkItemRepository) List(ctx context.Context, filters secondary.WorkItemFilters) ([]*secondary.WorkItemRecord, error) {
	query := `SELECT id, sprint_id, title, description, state, assignee_agent_id, acceptance_criteria, external_refs, created_at, updated_at
	          FROM work_items WHERE 1=1`
	args := []any{}

	if filters.SprintID != "" {
		query += " AND sprint_id = ?"
		args = append(args, filters.SprintID)
	}
	if filters.State != "" {
		query += " AND state = ?"
		args = append(args, filters.State)
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.WorkItemRecord
	for rows.Next() {
		record, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := r.loadChildren(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ListIDsBySprint returns the IDs of the sprint's work items in creation
// order.
func (r *WorkItemRepository) ListIDsBySprint(ctx context.Context, sprintID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM work_items WHERE sprint_id = ? ORDER BY id`, sprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work item IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan work item ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendDelegation appends a delegation row to the work item.
func (r *WorkItemRepository) AppendDelegation(ctx context.Context, workItemID string, d *secondary.DelegationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO delegations (work_item_id, from_agent_id, to_agent_id, delegated_at, session_key, isolated, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		workItemID, d.FromAgentID, d.ToAgentID, d.DelegatedAt, d.SessionKey, d.Isolated, d.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to append delegation: %w", err)
	}
	return nil
}

// CompleteDelegation finalizes the single active delegation matching
// sessionKey on the work item.
func (r *WorkItemRepository) CompleteDelegation(ctx context.Context, workItemID, sessionKey, status, completedAt, outcome string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE delegations SET status = ?, completed_at = ?, outcome = ?
		 WHERE work_item_id = ? AND session_key = ? AND status = 'active'`,
		status, completedAt, outcome, workItemID, sessionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to complete delegation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("active delegation %s on %s: %w", sessionKey, workItemID, secondary.ErrNotFound)
	}
	return nil
}

// AppendReview appends a review row to the work item.
func (r *WorkItemRepository) AppendReview(ctx context.Context, workItemID string, rec *secondary.ReviewRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, work_item_id, reviewer_agent_id, status, feedback, requested_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, workItemID, rec.ReviewerAgentID, rec.Status, rec.Feedback, rec.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append review: %w", err)
	}
	return nil
}

// UpdateReview stamps a review's status, feedback, and decision time.
func (r *WorkItemRepository) UpdateReview(ctx context.Context, reviewID, status, feedback, decidedAt string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET status = ?, feedback = ?, decided_at = ? WHERE id = ?`,
		status, feedback, decidedAt, reviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("review %s: %w", reviewID, secondary.ErrNotFound)
	}
	return nil
}

// SprintExists checks if a sprint exists.
func (r *WorkItemRepository) SprintExists(ctx context.Context, sprintID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sprints WHERE id = ?`, sprintID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sprint existence: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available work item ID.
func (r *WorkItemRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "work_items", "ITEM")
}

// GetNextReviewID returns the next available review ID.
func (r *WorkItemRepository) GetNextReviewID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "reviews", "REV")
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *WorkItemRepository) scanItem(row scanner) (*secondary.WorkItemRecord, error) {
	var (
		description sql.NullString
		assignee    sql.NullString
		criteria    string
		refs        string
	)

	record := &secondary.WorkItemRecord{}
	err := row.Scan(&record.ID, &record.SprintID, &record.Title, &description, &record.State,
		&assignee, &criteria, &refs, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.Description = description.String
	record.AssigneeAgentID = assignee.String

	if err := json.Unmarshal([]byte(criteria), &record.AcceptanceCriteria); err != nil {
		return nil, fmt.Errorf("failed to decode acceptance criteria: %w", err)
	}
	if err := json.Unmarshal([]byte(refs), &record.ExternalRefs); err != nil {
		return nil, fmt.Errorf("failed to decode external refs: %w", err)
	}
	return record, nil
}

func (r *WorkItemRepository) loadChildren(ctx context.Context, item *secondary.WorkItemRecord) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT from_agent_id, to_agent_id, delegated_at, session_key, isolated, status, completed_at, outcome
		 FROM delegations WHERE work_item_id = ? ORDER BY id`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load delegations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d           secondary.DelegationRecord
			completedAt sql.NullString
			outcome     sql.NullString
		)
		if err := rows.Scan(&d.FromAgentID, &d.ToAgentID, &d.DelegatedAt, &d.SessionKey,
			&d.Isolated, &d.Status, &completedAt, &outcome); err != nil {
			return fmt.Errorf("failed to scan delegation: %w", err)
		}
		d.CompletedAt = completedAt.String
		d.Outcome = outcome.String
		item.Delegations = append(item.Delegations, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	reviewRows, err := r.db.QueryContext(ctx,
		`SELECT id, work_item_id, reviewer_agent_id, status, feedback, requested_at, decided_at
		 FROM reviews WHERE work_item_id = ? ORDER BY requested_at`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var (
			rec       secondary.ReviewRecord
			feedback  sql.NullString
			decidedAt sql.NullString
		)
		if err := reviewRows.Scan(&rec.ID, &rec.WorkItemID, &rec.ReviewerAgentID, &rec.Status,
			&feedback, &rec.RequestedAt, &decidedAt); err != nil {
			return fmt.Errorf("failed to scan review: %w", err)
		}
		rec.Feedback = feedback.String
		rec.DecidedAt = decidedAt.String
		item.Reviews = append(item.Reviews, rec)
	}
	return reviewRows.Err()
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Ensure WorkItemRepository implements the interface
var _ secondary.WorkItemRepository = (*WorkItemRepository)(nil)
