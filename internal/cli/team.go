package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/core/escalation"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// TeamCmd returns the team command group.
func TeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams and their members",
	}
	cmd.AddCommand(
		teamCreateCmd(),
		teamListCmd(),
		teamShowCmd(),
		teamAddMemberCmd(),
		teamSetEscalationCmd(),
	)
	return cmd
}

func teamCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, _ := cmd.Flags().GetString("org")
			memberSpecs, _ := cmd.Flags().GetStringSlice("member")

			members, err := parseMembers(memberSpecs)
			if err != nil {
				return err
			}

			team, err := wire.TeamService().CreateTeam(NewContext(), primary.CreateTeamRequest{
				OrganizationID: orgID,
				Name:           args[0],
				Members:        members,
			})
			if err != nil {
				return fmt.Errorf("failed to create team: %w", err)
			}
			fmt.Printf("Created team %s (%s) with %d members\n", team.ID, team.Name, len(team.Members))
			return nil
		},
	}
	cmd.Flags().String("org", "", "Organization ID (required)")
	cmd.Flags().StringSlice("member", nil, "Team member as agent-id:role (repeatable)")
	cmd.MarkFlagRequired("org")
	return cmd
}

func teamListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, _ := cmd.Flags().GetString("org")

			teams, err := wire.TeamService().ListTeams(NewContext(), primary.TeamFilters{
				OrganizationID: orgID,
			})
			if err != nil {
				return fmt.Errorf("failed to list teams: %w", err)
			}

			if len(teams) == 0 {
				fmt.Println("No teams found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tORG\tMEMBERS\tESCALATION")
			fmt.Fprintln(w, "--\t----\t---\t-------\t----------")
			for _, team := range teams {
				target := "-"
				if team.EscalationTarget != nil {
					target = team.EscalationTarget.AgentID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					team.ID, team.Name, team.OrganizationID, len(team.Members), target)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().String("org", "", "Filter by organization ID")
	return cmd
}

func teamShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [team-id]",
		Short: "Show team details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := wire.TeamService().GetTeam(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("team not found: %w", err)
			}

			fmt.Printf("Team: %s\n", team.ID)
			fmt.Printf("Name: %s\n", team.Name)
			fmt.Printf("Organization: %s\n", team.OrganizationID)
			if team.EscalationTarget != nil {
				fmt.Printf("Escalation Target: %s\n", team.EscalationTarget.AgentID)
			}
			fmt.Printf("Created: %s\n", team.CreatedAt)
			if len(team.Members) > 0 {
				fmt.Println("Members:")
				for _, m := range team.Members {
					fmt.Printf("  %s (%s)\n", m.AgentID, m.Role)
				}
			}
			return nil
		},
	}
}

func teamAddMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-member [team-id] [agent-id]",
		Short: "Add an agent to a team (replaces the role if already a member)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")

			team, err := wire.TeamService().AddMember(NewContext(), args[0], primary.TeamMember{
				AgentID: args[1],
				Role:    role,
			})
			if err != nil {
				return fmt.Errorf("failed to add member: %w", err)
			}
			fmt.Printf("Team %s now has %d members\n", team.ID, len(team.Members))
			return nil
		},
	}
	cmd.Flags().String("role", "developer", "Member role (e.g. coordinator, developer)")
	return cmd
}

func teamSetEscalationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-escalation [team-id]",
		Short: "Set or clear the team's explicit escalation target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID, _ := cmd.Flags().GetString("agent")
			clear, _ := cmd.Flags().GetBool("clear")

			var target *escalation.Target
			if !clear {
				if agentID == "" {
					return fmt.Errorf("either --agent or --clear required")
				}
				target = &escalation.Target{Kind: escalation.TargetKindAgent, AgentID: agentID}
			}

			team, err := wire.TeamService().SetEscalationTarget(NewContext(), args[0], target)
			if err != nil {
				return fmt.Errorf("failed to set escalation target: %w", err)
			}
			if team.EscalationTarget != nil {
				fmt.Printf("Team %s escalates to %s\n", team.ID, team.EscalationTarget.AgentID)
			} else {
				fmt.Printf("Team %s escalation target cleared\n", team.ID)
			}
			return nil
		},
	}
	cmd.Flags().String("agent", "", "Agent ID to escalate to")
	cmd.Flags().Bool("clear", false, "Clear the explicit target")
	return cmd
}

func parseMembers(specs []string) ([]primary.TeamMember, error) {
	members := make([]primary.TeamMember, 0, len(specs))
	for _, spec := range specs {
		agentID, role, ok := strings.Cut(spec, ":")
		if !ok || agentID == "" || role == "" {
			return nil, fmt.Errorf("invalid member %q (expected agent-id:role)", spec)
		}
		members = append(members, primary.TeamMember{AgentID: agentID, Role: role})
	}
	return members, nil
}
