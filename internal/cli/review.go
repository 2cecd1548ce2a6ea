package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// ReviewCmd returns the review command group.
func ReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Request and record work item reviews",
	}
	cmd.AddCommand(reviewRequestCmd(), reviewVerdictCmd())
	return cmd
}

func reviewRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request [item-id]",
		Short: "Request a review on a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, _ := cmd.Flags().GetString("reviewer")

			review, err := wire.ReviewService().RequestReview(NewContext(), args[0], reviewer)
			if err != nil {
				return fmt.Errorf("failed to request review: %w", err)
			}
			fmt.Printf("Review %s requested from %s\n", review.ID, review.ReviewerAgentID)
			return nil
		},
	}
	cmd.Flags().String("reviewer", "", "Reviewer agent ID (required)")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}

func reviewVerdictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verdict [item-id] [approved|changes_requested]",
		Short: "Record a review verdict",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, _ := cmd.Flags().GetString("reviewer")
			feedback, _ := cmd.Flags().GetString("feedback")

			review, err := wire.ReviewService().RecordVerdict(NewContext(), args[0], reviewer, args[1], feedback)
			if err != nil {
				return fmt.Errorf("failed to record verdict: %w", err)
			}
			next := "done"
			if review.Status == primary.ReviewChangesRequested {
				next = "in_progress"
			}
			fmt.Printf("Review %s recorded as %s; work item moved to %s\n", review.ID, review.Status, next)
			return nil
		},
	}
	cmd.Flags().String("reviewer", "", "Reviewer agent ID (required)")
	cmd.Flags().String("feedback", "", "Review feedback")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}
