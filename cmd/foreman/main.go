package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/cli"
	"github.com/example/foreman/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "foreman",
		Short:   "Foreman - sprint orchestration for agent teams",
		Version: version.String(),
		Long: `Foreman coordinates teams of coding agents through sprints.
It tracks work items, delegations, and reviews, and escalates
blocked or stalled work to a configured target.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.OrgCmd())
	rootCmd.AddCommand(cli.TeamCmd())
	rootCmd.AddCommand(cli.SprintCmd())
	rootCmd.AddCommand(cli.ItemCmd())
	rootCmd.AddCommand(cli.DelegationCmd())
	rootCmd.AddCommand(cli.ReviewCmd())
	rootCmd.AddCommand(cli.EscalationCmd())
	rootCmd.AddCommand(cli.MonitorCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
