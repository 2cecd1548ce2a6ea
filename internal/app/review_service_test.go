package app

import (
	"context"
	"testing"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
)

func newTestReviewService() (*ReviewServiceImpl, *mockWorkItemRepository) {
	repo := newMockWorkItemRepository()
	service := NewReviewService(repo)
	return service, repo
}

func TestReviewService_RequestReview(t *testing.T) {
	service, repo := newTestReviewService()
	ctx := context.Background()
	seedWorkItem(repo, "ITEM-001", "SPR-001", string(workitem.StateInProgress))

	review, err := service.RequestReview(ctx, "ITEM-001", "agent-reviewer")
	if err != nil {
		t.Fatalf("RequestReview failed: %v", err)
	}
	if review.ID != "REV-001" {
		t.Errorf("expected ID REV-001, got %s", review.ID)
	}
	if review.Status != primary.ReviewPending {
		t.Errorf("expected pending review, got %s", review.Status)
	}
	if repo.items["ITEM-001"].State != string(workitem.StateInReview) {
		t.Errorf("requesting review should move the item to in_review, got %s",
			repo.items["ITEM-001"].State)
	}
}

func TestReviewService_RecordVerdict_Approved(t *testing.T) {
	service, repo := newTestReviewService()
	ctx := context.Background()
	seedWorkItem(repo, "ITEM-001", "SPR-001", string(workitem.StateInProgress))

	if _, err := service.RequestReview(ctx, "ITEM-001", "agent-reviewer"); err != nil {
		t.Fatalf("RequestReview failed: %v", err)
	}

	review, err := service.RecordVerdict(ctx, "ITEM-001", "agent-reviewer", primary.ReviewApproved, "ship it")
	if err != nil {
		t.Fatalf("RecordVerdict failed: %v", err)
	}
	if review.Status != primary.ReviewApproved {
		t.Errorf("expected approved, got %s", review.Status)
	}
	if review.DecidedAt == "" {
		t.Error("expected decidedAt to be stamped")
	}
	if repo.items["ITEM-001"].State != string(workitem.StateDone) {
		t.Errorf("approval should move the item to done, got %s", repo.items["ITEM-001"].State)
	}
}

func TestReviewService_RecordVerdict_ChangesRequested(t *testing.T) {
	service, repo := newTestReviewService()
	ctx := context.Background()
	seedWorkItem(repo, "ITEM-001", "SPR-001", string(workitem.StateInProgress))

	if _, err := service.RequestReview(ctx, "ITEM-001", "agent-reviewer"); err != nil {
		t.Fatalf("RequestReview failed: %v", err)
	}

	review, err := service.RecordVerdict(ctx, "ITEM-001", "agent-reviewer", primary.ReviewChangesRequested, "needs tests")
	if err != nil {
		t.Fatalf("RecordVerdict failed: %v", err)
	}
	if review.Feedback != "needs tests" {
		t.Errorf("unexpected feedback: %q", review.Feedback)
	}
	if repo.items["ITEM-001"].State != string(workitem.StateInProgress) {
		t.Errorf("changes_requested should move the item back to in_progress, got %s",
			repo.items["ITEM-001"].State)
	}
}

func TestReviewService_RecordVerdict_InvalidVerdict(t *testing.T) {
	service, repo := newTestReviewService()
	seedWorkItem(repo, "ITEM-001", "SPR-001", string(workitem.StateInReview))

	_, err := service.RecordVerdict(context.Background(), "ITEM-001", "agent-reviewer", "maybe", "")
	if err == nil {
		t.Fatal("expected error for invalid verdict")
	}
}

func TestReviewService_RecordVerdict_NoPendingReview(t *testing.T) {
	service, repo := newTestReviewService()
	seedWorkItem(repo, "ITEM-001", "SPR-001", string(workitem.StateInReview))

	_, err := service.RecordVerdict(context.Background(), "ITEM-001", "agent-reviewer", primary.ReviewApproved, "")
	if !primary.IsNotFound(err) {
		t.Fatalf("expected NotFoundError when no pending review exists, got %v", err)
	}
}

func TestReviewService_RequestReview_UnknownItem(t *testing.T) {
	service, _ := newTestReviewService()

	_, err := service.RequestReview(context.Background(), "ITEM-404", "agent-reviewer")
	if !primary.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
