package primary

import "context"

// ReviewService defines the primary port for work item reviews.
type ReviewService interface {
	// RequestReview appends a pending review to the work item and moves it
	// to in_review.
	RequestReview(ctx context.Context, workItemID, reviewerAgentID string) (*Review, error)

	// RecordVerdict stamps the pending review by the given reviewer with a
	// verdict: approved moves the item to done, changes_requested moves it
	// back to in_progress. Fails with NotFoundError when no pending review
	// by that reviewer exists.
	RecordVerdict(ctx context.Context, workItemID, reviewerAgentID, verdict, feedback string) (*Review, error)
}
