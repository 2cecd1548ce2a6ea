package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// WorkItemServiceImpl implements the WorkItemService interface.
type WorkItemServiceImpl struct {
	itemRepo secondary.WorkItemRepository
	now      func() time.Time
}

// NewWorkItemService creates a new WorkItemService with injected
// dependencies.
func NewWorkItemService(itemRepo secondary.WorkItemRepository) *WorkItemServiceImpl {
	return &WorkItemServiceImpl{itemRepo: itemRepo, now: time.Now}
}

// CreateWorkItem creates a work item in the backlog state under an existing
// sprint.
func (s *WorkItemServiceImpl) CreateWorkItem(ctx context.Context, req primary.CreateWorkItemRequest) (*primary.WorkItem, error) {
	if req.SprintID == "" || req.Title == "" {
		return nil, fmt.Errorf("sprint ID and title required")
	}

	exists, err := s.itemRepo.SprintExists(ctx, req.SprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate sprint: %w", err)
	}
	if !exists {
		return nil, primary.NewNotFound("sprint", req.SprintID)
	}

	id, err := s.itemRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work item ID: %w", err)
	}

	ts := s.now().UTC().Format(time.RFC3339)
	record := &secondary.WorkItemRecord{
		ID:                 id,
		SprintID:           req.SprintID,
		Title:              req.Title,
		Description:        req.Description,
		State:              string(workitem.InitialState()),
		AssigneeAgentID:    req.AssigneeAgentID,
		AcceptanceCriteria: req.AcceptanceCriteria,
		ExternalRefs:       req.ExternalRefs,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}
	if err := s.itemRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create work item: %w", err)
	}

	return recordToWorkItem(record), nil
}

// GetWorkItem retrieves a work item by ID.
func (s *WorkItemServiceImpl) GetWorkItem(ctx context.Context, id string) (*primary.WorkItem, error) {
	record, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", id)
		}
		return nil, err
	}
	return recordToWorkItem(record), nil
}

// UpdateWorkItem merges descriptive fields into the stored item. State and
// delegations are never mutated through this path.
func (s *WorkItemServiceImpl) UpdateWorkItem(ctx context.Context, id string, patch primary.UpdateWorkItemPatch) (*primary.WorkItem, error) {
	if _, err := s.itemRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", id)
		}
		return nil, err
	}

	record := &secondary.WorkItemRecord{
		ID:              id,
		Title:           patch.Title,
		Description:     patch.Description,
		AssigneeAgentID: patch.AssigneeAgentID,
	}
	if err := s.itemRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update work item: %w", err)
	}

	return s.GetWorkItem(ctx, id)
}

// UpdateWorkItemState sets the state unconditionally.
func (s *WorkItemServiceImpl) UpdateWorkItemState(ctx context.Context, id string, state workitem.State) (*primary.WorkItem, error) {
	if !workitem.IsValid(state) {
		return nil, fmt.Errorf("unknown work item state: %s", state)
	}

	if _, err := s.itemRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", id)
		}
		return nil, err
	}

	if err := s.itemRepo.UpdateState(ctx, id, string(state)); err != nil {
		return nil, fmt.Errorf("failed to update work item state: %w", err)
	}

	return s.GetWorkItem(ctx, id)
}

// ListWorkItems lists work items with optional filters.
func (s *WorkItemServiceImpl) ListWorkItems(ctx context.Context, filters primary.WorkItemFilters) ([]*primary.WorkItem, error) {
	records, err := s.itemRepo.List(ctx, secondary.WorkItemFilters{
		SprintID: filters.SprintID,
		State:    string(filters.State),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}

	items := make([]*primary.WorkItem, len(records))
	for i, r := range records {
		items[i] = recordToWorkItem(r)
	}
	return items, nil
}

// FindByExternalRef returns the first work item carrying ref in its
// externalRefs, or (nil, nil) when none does. Exact string match.
func (s *WorkItemServiceImpl) FindByExternalRef(ctx context.Context, ref string) (*primary.WorkItem, error) {
	records, err := s.itemRepo.List(ctx, secondary.WorkItemFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}

	for _, r := range records {
		for _, candidate := range r.ExternalRefs {
			if candidate == ref {
				return recordToWorkItem(r), nil
			}
		}
	}
	return nil, nil
}

func recordToWorkItem(r *secondary.WorkItemRecord) *primary.WorkItem {
	delegations := make([]primary.Delegation, len(r.Delegations))
	for i, d := range r.Delegations {
		delegations[i] = recordToDelegation(d)
	}

	reviews := make([]primary.Review, len(r.Reviews))
	for i, rv := range r.Reviews {
		reviews[i] = primary.Review{
			ID:              rv.ID,
			ReviewerAgentID: rv.ReviewerAgentID,
			Status:          rv.Status,
			Feedback:        rv.Feedback,
			RequestedAt:     rv.RequestedAt,
			DecidedAt:       rv.DecidedAt,
		}
	}

	return &primary.WorkItem{
		ID:                 r.ID,
		SprintID:           r.SprintID,
		Title:              r.Title,
		Description:        r.Description,
		State:              workitem.State(r.State),
		AssigneeAgentID:    r.AssigneeAgentID,
		AcceptanceCriteria: r.AcceptanceCriteria,
		ExternalRefs:       r.ExternalRefs,
		Delegations:        delegations,
		Reviews:            reviews,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func recordToDelegation(d secondary.DelegationRecord) primary.Delegation {
	return primary.Delegation{
		FromAgentID: d.FromAgentID,
		ToAgentID:   d.ToAgentID,
		DelegatedAt: d.DelegatedAt,
		SessionKey:  d.SessionKey,
		Isolated:    d.Isolated,
		Status:      workitem.DelegationStatus(d.Status),
		CompletedAt: d.CompletedAt,
		Outcome:     d.Outcome,
	}
}

// Ensure WorkItemServiceImpl implements the interface
var _ primary.WorkItemService = (*WorkItemServiceImpl)(nil)
