package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// EscalationCmd returns the escalation command group.
func EscalationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalation",
		Short: "List and resolve escalations",
	}
	cmd.AddCommand(escalationListCmd(), escalationResolveCmd())
	return cmd
}

func escalationListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open escalations",
		RunE: func(cmd *cobra.Command, args []string) error {
			sprintID, _ := cmd.Flags().GetString("sprint")
			teamID, _ := cmd.Flags().GetString("team")

			escalations, err := wire.EscalationService().ListOpenEscalations(NewContext(), primary.EscalationFilters{
				SprintID: sprintID,
				TeamID:   teamID,
			})
			if err != nil {
				return fmt.Errorf("failed to list escalations: %w", err)
			}

			if len(escalations) == 0 {
				fmt.Println("No open escalations.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTRIGGER\tITEM\tSPRINT\tTARGET\tCREATED")
			fmt.Fprintln(w, "--\t-------\t----\t------\t------\t-------")
			for _, e := range escalations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Trigger, e.WorkItemID, e.SprintID, e.Target.AgentID, e.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().String("sprint", "", "Filter by sprint ID")
	cmd.Flags().String("team", "", "Filter by team ID")
	return cmd
}

func escalationResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [escalation-id]",
		Short: "Resolve an escalation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution, _ := cmd.Flags().GetString("resolution")

			e, err := wire.EscalationService().ResolveEscalation(NewContext(), args[0], resolution)
			if err != nil {
				return fmt.Errorf("failed to resolve escalation: %w", err)
			}
			fmt.Printf("Escalation %s resolved at %s\n", e.ID, e.ResolvedAt)
			return nil
		},
	}
	cmd.Flags().String("resolution", "", "How the escalation was resolved")
	return cmd
}
