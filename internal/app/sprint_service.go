package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	coresprint "github.com/example/foreman/internal/core/sprint"
	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// SprintServiceImpl implements the SprintService interface.
type SprintServiceImpl struct {
	sprintRepo secondary.SprintRepository
	teamRepo   secondary.TeamRepository
	itemRepo   secondary.WorkItemRepository
	now        func() time.Time
}

// NewSprintService creates a new SprintService with injected dependencies.
func NewSprintService(
	sprintRepo secondary.SprintRepository,
	teamRepo secondary.TeamRepository,
	itemRepo secondary.WorkItemRepository,
) *SprintServiceImpl {
	return &SprintServiceImpl{
		sprintRepo: sprintRepo,
		teamRepo:   teamRepo,
		itemRepo:   itemRepo,
		now:        time.Now,
	}
}

// CreateSprint creates a sprint in the planning state.
func (s *SprintServiceImpl) CreateSprint(ctx context.Context, req primary.CreateSprintRequest) (*primary.Sprint, error) {
	if req.TeamID == "" || req.Name == "" {
		return nil, fmt.Errorf("team ID and sprint name required")
	}

	if _, err := s.teamRepo.GetByID(ctx, req.TeamID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("team", req.TeamID)
		}
		return nil, fmt.Errorf("failed to validate team: %w", err)
	}

	id, err := s.sprintRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sprint ID: %w", err)
	}

	ts := s.now().UTC().Format(time.RFC3339)
	record := &secondary.SprintRecord{
		ID:        id,
		TeamID:    req.TeamID,
		Name:      req.Name,
		State:     string(coresprint.InitialState()),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.sprintRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}

	return s.recordToSprint(ctx, record)
}

// GetSprint retrieves a sprint by ID.
func (s *SprintServiceImpl) GetSprint(ctx context.Context, id string) (*primary.Sprint, error) {
	record, err := s.sprintRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("sprint", id)
		}
		return nil, err
	}
	return s.recordToSprint(ctx, record)
}

// ListSprints lists sprints with optional filters.
func (s *SprintServiceImpl) ListSprints(ctx context.Context, filters primary.SprintFilters) ([]*primary.Sprint, error) {
	records, err := s.sprintRepo.List(ctx, secondary.SprintFilters{
		TeamID: filters.TeamID,
		State:  string(filters.State),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}

	sprints := make([]*primary.Sprint, 0, len(records))
	for _, r := range records {
		sp, err := s.recordToSprint(ctx, r)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, sp)
	}
	return sprints, nil
}

// TransitionSprint validates and applies a lifecycle transition.
func (s *SprintServiceImpl) TransitionSprint(ctx context.Context, id string, to coresprint.State) (*primary.Sprint, error) {
	record, err := s.sprintRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("sprint", id)
		}
		return nil, err
	}

	if err := coresprint.CheckTransition(coresprint.State(record.State), to); err != nil {
		return nil, err
	}

	if err := s.sprintRepo.UpdateState(ctx, id, string(to)); err != nil {
		return nil, fmt.Errorf("failed to update sprint state: %w", err)
	}

	record.State = string(to)
	record.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	return s.recordToSprint(ctx, record)
}

// GetSprintReport tallies the sprint's work items by state.
func (s *SprintServiceImpl) GetSprintReport(ctx context.Context, id string) (*primary.SprintReport, error) {
	record, err := s.sprintRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("sprint", id)
		}
		return nil, err
	}

	items, err := s.itemRepo.List(ctx, secondary.WorkItemFilters{SprintID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint work items: %w", err)
	}

	counts := make(map[workitem.State]int, len(workitem.States))
	for _, state := range workitem.States {
		counts[state] = 0
	}
	for _, item := range items {
		counts[workitem.State(item.State)]++
	}

	return &primary.SprintReport{
		SprintID:       record.ID,
		Name:           record.Name,
		State:          coresprint.State(record.State),
		TotalItems:     len(items),
		WorkItemCounts: counts,
	}, nil
}

func (s *SprintServiceImpl) recordToSprint(ctx context.Context, r *secondary.SprintRecord) (*primary.Sprint, error) {
	itemIDs, err := s.itemRepo.ListIDsBySprint(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint item IDs: %w", err)
	}

	return &primary.Sprint{
		ID:          r.ID,
		TeamID:      r.TeamID,
		Name:        r.Name,
		State:       coresprint.State(r.State),
		WorkItemIDs: itemIDs,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// Ensure SprintServiceImpl implements the interface
var _ primary.SprintService = (*SprintServiceImpl)(nil)
