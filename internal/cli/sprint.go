package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	coresprint "github.com/example/foreman/internal/core/sprint"
	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// SprintCmd returns the sprint command group.
func SprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}
	cmd.AddCommand(
		sprintCreateCmd(),
		sprintListCmd(),
		sprintShowCmd(),
		sprintTransitionCmd(),
		sprintReportCmd(),
	)
	return cmd
}

func sprintCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a sprint in the planning state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, _ := cmd.Flags().GetString("team")

			sprint, err := wire.SprintService().CreateSprint(NewContext(), primary.CreateSprintRequest{
				TeamID: teamID,
				Name:   args[0],
			})
			if err != nil {
				return fmt.Errorf("failed to create sprint: %w", err)
			}
			fmt.Printf("Created sprint %s (%s) in %s\n", sprint.ID, sprint.Name, sprint.State)
			return nil
		},
	}
	cmd.Flags().String("team", "", "Team ID (required)")
	cmd.MarkFlagRequired("team")
	return cmd
}

func sprintListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, _ := cmd.Flags().GetString("team")
			state, _ := cmd.Flags().GetString("state")

			sprints, err := wire.SprintService().ListSprints(NewContext(), primary.SprintFilters{
				TeamID: teamID,
				State:  coresprint.State(state),
			})
			if err != nil {
				return fmt.Errorf("failed to list sprints: %w", err)
			}

			if len(sprints) == 0 {
				fmt.Println("No sprints found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTEAM\tSTATE\tITEMS")
			fmt.Fprintln(w, "--\t----\t----\t-----\t-----")
			for _, sprint := range sprints {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					sprint.ID, sprint.Name, sprint.TeamID, sprint.State, len(sprint.WorkItemIDs))
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().String("team", "", "Filter by team ID")
	cmd.Flags().String("state", "", "Filter by state")
	return cmd
}

func sprintShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [sprint-id]",
		Short: "Show sprint details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sprint, err := wire.SprintService().GetSprint(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("sprint not found: %w", err)
			}

			fmt.Printf("Sprint: %s\n", sprint.ID)
			fmt.Printf("Name: %s\n", sprint.Name)
			fmt.Printf("Team: %s\n", sprint.TeamID)
			fmt.Printf("State: %s\n", sprint.State)
			fmt.Printf("Created: %s\n", sprint.CreatedAt)
			if len(sprint.WorkItemIDs) > 0 {
				fmt.Println("Work Items:")
				for _, id := range sprint.WorkItemIDs {
					fmt.Printf("  %s\n", id)
				}
			}
			return nil
		},
	}
}

func sprintTransitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition [sprint-id] [state]",
		Short: "Move a sprint through its lifecycle (planning, active, review, retrospective, closed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sprint, err := wire.SprintService().TransitionSprint(NewContext(), args[0], coresprint.State(args[1]))
			if err != nil {
				return fmt.Errorf("failed to transition sprint: %w", err)
			}
			fmt.Printf("Sprint %s is now %s\n", sprint.ID, sprint.State)
			return nil
		},
	}
}

func sprintReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [sprint-id]",
		Short: "Show work item counts by state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.SprintService().GetSprintReport(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to build sprint report: %w", err)
			}

			fmt.Printf("Sprint: %s (%s)\n", report.SprintID, report.Name)
			fmt.Printf("State: %s\n", report.State)
			fmt.Printf("Total Items: %d\n", report.TotalItems)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, state := range workitem.States {
				fmt.Fprintf(w, "  %s\t%d\n", state, report.WorkItemCounts[state])
			}
			w.Flush()
			return nil
		},
	}
}
