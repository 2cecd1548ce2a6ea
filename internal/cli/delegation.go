package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// DelegationCmd returns the delegation command group.
func DelegationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delegation",
		Short: "Manage work item delegations",
	}
	cmd.AddCommand(
		delegationAddCmd(),
		delegationCompleteCmd(),
		delegationFindCmd(),
		delegationSessionEndedCmd(),
	)
	return cmd
}

func delegationAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [item-id]",
		Short: "Delegate a work item to an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			sessionKey, _ := cmd.Flags().GetString("session")
			isolated, _ := cmd.Flags().GetBool("isolated")

			if sessionKey == "" {
				sessionKey = uuid.NewString()
			}

			d, err := wire.DelegationService().AddDelegation(NewContext(), primary.AddDelegationRequest{
				WorkItemID:  args[0],
				FromAgentID: from,
				ToAgentID:   to,
				SessionKey:  sessionKey,
				Isolated:    isolated,
			})
			if err != nil {
				return fmt.Errorf("failed to add delegation: %w", err)
			}
			fmt.Printf("Delegated %s to %s (session %s)\n", args[0], d.ToAgentID, d.SessionKey)
			return nil
		},
	}
	cmd.Flags().String("from", "", "Delegating agent ID (required)")
	cmd.Flags().String("to", "", "Delegate agent ID (required)")
	cmd.Flags().String("session", "", "Session key (generated when omitted)")
	cmd.Flags().Bool("isolated", false, "Run the delegate in an isolated session")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func delegationCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [item-id] [session-key]",
		Short: "Complete a delegation and roll its outcome into the item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed, _ := cmd.Flags().GetBool("failed")
			outcomeText, _ := cmd.Flags().GetString("outcome")

			outcome := workitem.DelegationCompleted
			if failed {
				outcome = workitem.DelegationFailed
			}

			d, err := wire.DelegationService().CompleteDelegation(NewContext(), args[0], args[1], outcome, outcomeText)
			if err != nil {
				return fmt.Errorf("failed to complete delegation: %w", err)
			}
			fmt.Printf("Delegation %s on %s is %s\n", d.SessionKey, args[0], d.Status)
			return nil
		},
	}
	cmd.Flags().Bool("failed", false, "Mark the delegation failed (blocks the item)")
	cmd.Flags().String("outcome", "", "Outcome summary text")
	return cmd
}

func delegationFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [session-key]",
		Short: "Find the work item holding an active delegation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := wire.DelegationService().FindActiveBySessionKey(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to find delegation: %w", err)
			}
			if match == nil {
				fmt.Println("No active delegation with that session key.")
				return nil
			}
			fmt.Printf("%s: %s -> %s (delegated %s)\n",
				match.WorkItemID, match.Delegation.FromAgentID, match.Delegation.ToAgentID, match.Delegation.DelegatedAt)
			return nil
		},
	}
}

// delegationSessionEndedCmd is the hook entry point agent runtimes call when
// a delegated session exits.
func delegationSessionEndedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session-ended [session-key]",
		Short: "Report a delegated session's exit and roll up its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed, _ := cmd.Flags().GetBool("failed")
			reason, _ := cmd.Flags().GetString("reason")

			match, err := wire.DelegationService().CompleteBySessionKey(NewContext(), args[0], !failed, reason)
			if err != nil {
				return fmt.Errorf("failed to complete delegation: %w", err)
			}
			if match == nil {
				// Unknown sessions are fine; not every session is a delegation.
				return nil
			}
			fmt.Printf("Work item %s updated (%s)\n", match.WorkItemID, match.Delegation.Outcome)
			return nil
		},
	}
	cmd.Flags().Bool("failed", false, "The session ended without completing its work")
	cmd.Flags().String("reason", "", "Why the session ended early")
	return cmd
}
