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

// ReviewServiceImpl implements the ReviewService interface.
type ReviewServiceImpl struct {
	itemRepo secondary.WorkItemRepository
	now      func() time.Time
}

// NewReviewService creates a new ReviewService with injected dependencies.
func NewReviewService(itemRepo secondary.WorkItemRepository) *ReviewServiceImpl {
	return &ReviewServiceImpl{itemRepo: itemRepo, now: time.Now}
}

// RequestReview appends a pending review and moves the item to in_review.
func (s *ReviewServiceImpl) RequestReview(ctx context.Context, workItemID, reviewerAgentID string) (*primary.Review, error) {
	if reviewerAgentID == "" {
		return nil, fmt.Errorf("reviewer agent ID required")
	}

	if _, err := s.itemRepo.GetByID(ctx, workItemID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", workItemID)
		}
		return nil, err
	}

	id, err := s.itemRepo.GetNextReviewID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate review ID: %w", err)
	}

	record := &secondary.ReviewRecord{
		ID:              id,
		WorkItemID:      workItemID,
		ReviewerAgentID: reviewerAgentID,
		Status:          primary.ReviewPending,
		RequestedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.itemRepo.AppendReview(ctx, workItemID, record); err != nil {
		return nil, fmt.Errorf("failed to append review: %w", err)
	}

	if err := s.itemRepo.UpdateState(ctx, workItemID, string(workitem.StateInReview)); err != nil {
		return nil, fmt.Errorf("failed to update work item state: %w", err)
	}

	return &primary.Review{
		ID:              record.ID,
		ReviewerAgentID: record.ReviewerAgentID,
		Status:          record.Status,
		RequestedAt:     record.RequestedAt,
	}, nil
}

// RecordVerdict stamps the pending review by the given reviewer and moves
// the item accordingly: approved -> done, changes_requested -> in_progress.
func (s *ReviewServiceImpl) RecordVerdict(ctx context.Context, workItemID, reviewerAgentID, verdict, feedback string) (*primary.Review, error) {
	if verdict != primary.ReviewApproved && verdict != primary.ReviewChangesRequested {
		return nil, fmt.Errorf("invalid verdict: %s (must be %s or %s)", verdict, primary.ReviewApproved, primary.ReviewChangesRequested)
	}

	item, err := s.itemRepo.GetByID(ctx, workItemID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", workItemID)
		}
		return nil, err
	}

	var pending *secondary.ReviewRecord
	for i := range item.Reviews {
		r := &item.Reviews[i]
		if r.Status == primary.ReviewPending && r.ReviewerAgentID == reviewerAgentID {
			pending = r
			break
		}
	}
	if pending == nil {
		return nil, primary.NewNotFound("review", fmt.Sprintf("pending by %s on %s", reviewerAgentID, workItemID))
	}

	decidedAt := s.now().UTC().Format(time.RFC3339)
	if err := s.itemRepo.UpdateReview(ctx, pending.ID, verdict, feedback, decidedAt); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	next := workitem.StateDone
	if verdict == primary.ReviewChangesRequested {
		next = workitem.StateInProgress
	}
	if err := s.itemRepo.UpdateState(ctx, workItemID, string(next)); err != nil {
		return nil, fmt.Errorf("failed to update work item state: %w", err)
	}

	return &primary.Review{
		ID:              pending.ID,
		ReviewerAgentID: pending.ReviewerAgentID,
		Status:          verdict,
		Feedback:        feedback,
		RequestedAt:     pending.RequestedAt,
		DecidedAt:       decidedAt,
	}, nil
}

// Ensure ReviewServiceImpl implements the interface
var _ primary.ReviewService = (*ReviewServiceImpl)(nil)
