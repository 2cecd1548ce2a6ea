package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// ItemCmd returns the work item command group.
func ItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage work items",
	}
	cmd.AddCommand(
		itemCreateCmd(),
		itemListCmd(),
		itemShowCmd(),
		itemUpdateCmd(),
		itemStateCmd(),
	)
	return cmd
}

func itemCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a work item in the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sprintID, _ := cmd.Flags().GetString("sprint")
			description, _ := cmd.Flags().GetString("description")
			assignee, _ := cmd.Flags().GetString("assignee")
			criteria, _ := cmd.Flags().GetStringSlice("criterion")
			refs, _ := cmd.Flags().GetStringSlice("ref")

			item, err := wire.WorkItemService().CreateWorkItem(NewContext(), primary.CreateWorkItemRequest{
				SprintID:           sprintID,
				Title:              args[0],
				Description:        description,
				AssigneeAgentID:    assignee,
				AcceptanceCriteria: criteria,
				ExternalRefs:       refs,
			})
			if err != nil {
				return fmt.Errorf("failed to create work item: %w", err)
			}
			fmt.Printf("Created work item %s (%s)\n", item.ID, item.Title)
			return nil
		},
	}
	cmd.Flags().String("sprint", "", "Sprint ID (required)")
	cmd.Flags().String("description", "", "Item description")
	cmd.Flags().String("assignee", "", "Assignee agent ID")
	cmd.Flags().StringSlice("criterion", nil, "Acceptance criterion (repeatable)")
	cmd.Flags().StringSlice("ref", nil, "External reference, e.g. a PR URL (repeatable)")
	cmd.MarkFlagRequired("sprint")
	return cmd
}

func itemListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			sprintID, _ := cmd.Flags().GetString("sprint")
			state, _ := cmd.Flags().GetString("state")

			items, err := wire.WorkItemService().ListWorkItems(NewContext(), primary.WorkItemFilters{
				SprintID: sprintID,
				State:    workitem.State(state),
			})
			if err != nil {
				return fmt.Errorf("failed to list work items: %w", err)
			}

			if len(items) == 0 {
				fmt.Println("No work items found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSPRINT\tSTATE\tASSIGNEE\tDELEGATIONS")
			fmt.Fprintln(w, "--\t-----\t------\t-----\t--------\t-----------")
			for _, item := range items {
				assignee := item.AssigneeAgentID
				if assignee == "" {
					assignee = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					item.ID, item.Title, item.SprintID, item.State, assignee, len(item.Delegations))
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().String("sprint", "", "Filter by sprint ID")
	cmd.Flags().String("state", "", "Filter by state")
	return cmd
}

func itemShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [item-id]",
		Short: "Show work item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := wire.WorkItemService().GetWorkItem(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("work item not found: %w", err)
			}

			fmt.Printf("Work Item: %s\n", item.ID)
			fmt.Printf("Title: %s\n", item.Title)
			if item.Description != "" {
				fmt.Printf("Description: %s\n", item.Description)
			}
			fmt.Printf("Sprint: %s\n", item.SprintID)
			fmt.Printf("State: %s\n", item.State)
			if item.AssigneeAgentID != "" {
				fmt.Printf("Assignee: %s\n", item.AssigneeAgentID)
			}
			if len(item.AcceptanceCriteria) > 0 {
				fmt.Println("Acceptance Criteria:")
				for _, c := range item.AcceptanceCriteria {
					fmt.Printf("  - %s\n", c)
				}
			}
			if len(item.ExternalRefs) > 0 {
				fmt.Println("External Refs:")
				for _, r := range item.ExternalRefs {
					fmt.Printf("  - %s\n", r)
				}
			}
			if len(item.Delegations) > 0 {
				fmt.Println("Delegations:")
				for _, d := range item.Delegations {
					line := fmt.Sprintf("  %s -> %s [%s] session=%s", d.FromAgentID, d.ToAgentID, d.Status, d.SessionKey)
					if d.Outcome != "" {
						line += " " + d.Outcome
					}
					fmt.Println(line)
				}
			}
			if len(item.Reviews) > 0 {
				fmt.Println("Reviews:")
				for _, r := range item.Reviews {
					fmt.Printf("  %s by %s [%s]\n", r.ID, r.ReviewerAgentID, r.Status)
				}
			}
			fmt.Printf("Created: %s\n", item.CreatedAt)
			fmt.Printf("Updated: %s\n", item.UpdatedAt)
			return nil
		},
	}
}

func itemUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [item-id]",
		Short: "Update a work item's descriptive fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			assignee, _ := cmd.Flags().GetString("assignee")

			item, err := wire.WorkItemService().UpdateWorkItem(NewContext(), args[0], primary.UpdateWorkItemPatch{
				Title:           title,
				Description:     description,
				AssigneeAgentID: assignee,
			})
			if err != nil {
				return fmt.Errorf("failed to update work item: %w", err)
			}
			fmt.Printf("Updated work item %s\n", item.ID)
			return nil
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("assignee", "", "New assignee agent ID")
	return cmd
}

func itemStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state [item-id] [state]",
		Short: "Set a work item's state (backlog, ready, in_progress, in_review, blocked, done, dropped)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := wire.WorkItemService().UpdateWorkItemState(NewContext(), args[0], workitem.State(args[1]))
			if err != nil {
				return fmt.Errorf("failed to update work item state: %w", err)
			}
			fmt.Printf("Work item %s is now %s\n", item.ID, item.State)
			return nil
		},
	}
}
