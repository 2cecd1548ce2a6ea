package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/core/sprint"
	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show an overview of active sprints and open escalations",
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, _ := cmd.Flags().GetString("team")
			ctx := NewContext()

			sprints, err := wire.SprintService().ListSprints(ctx, primary.SprintFilters{TeamID: teamID})
			if err != nil {
				return fmt.Errorf("failed to list sprints: %w", err)
			}

			active := sprints[:0:0]
			for _, s := range sprints {
				if s.State != sprint.StateClosed {
					active = append(active, s)
				}
			}

			if len(active) == 0 {
				fmt.Println("No active sprints.")
			}

			for _, s := range active {
				fmt.Printf("%s %s %s (team %s)\n", s.ID, sprintStateLabel(s.State), s.Name, s.TeamID)

				report, err := wire.SprintService().GetSprintReport(ctx, s.ID)
				if err != nil {
					fmt.Printf("  (error loading report: %v)\n", err)
					continue
				}
				if report.TotalItems == 0 {
					fmt.Println("  no work items")
					continue
				}
				for _, state := range workitem.States {
					count := report.WorkItemCounts[state]
					if count == 0 {
						continue
					}
					fmt.Printf("  %s: %d\n", itemStateLabel(state), count)
				}
			}
			fmt.Println()

			escalations, err := wire.EscalationService().ListOpenEscalations(ctx, primary.EscalationFilters{TeamID: teamID})
			if err != nil {
				return fmt.Errorf("failed to list escalations: %w", err)
			}
			if len(escalations) == 0 {
				fmt.Printf("Escalations: %s\n", color.New(color.FgGreen).Sprint("none open"))
				return nil
			}

			fmt.Printf("Escalations: %s\n", color.New(color.FgRed).Sprintf("%d open", len(escalations)))
			for _, e := range escalations {
				fmt.Printf("  %s [%s] %s: %s\n", e.ID, e.Trigger, e.WorkItemID, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().String("team", "", "Limit the overview to one team")
	return cmd
}

func sprintStateLabel(s sprint.State) string {
	switch s {
	case sprint.StatePlanning:
		return color.New(color.FgHiCyan).Sprint("[planning]")
	case sprint.StateActive:
		return color.New(color.FgHiGreen).Sprint("[active]")
	case sprint.StateReview:
		return color.New(color.FgHiMagenta).Sprint("[review]")
	case sprint.StateRetrospective:
		return color.New(color.FgYellow).Sprint("[retrospective]")
	default:
		return fmt.Sprintf("[%s]", s)
	}
}

func itemStateLabel(s workitem.State) string {
	switch s {
	case workitem.StateBlocked:
		return color.New(color.FgRed).Sprint(string(s))
	case workitem.StateDone:
		return color.New(color.FgHiGreen).Sprint(string(s))
	case workitem.StateInProgress:
		return color.New(color.FgHiBlue).Sprint(string(s))
	case workitem.StateInReview:
		return color.New(color.FgHiMagenta).Sprint(string(s))
	default:
		return string(s)
	}
}
