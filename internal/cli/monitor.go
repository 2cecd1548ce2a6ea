package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/wire"
)

// MonitorCmd returns the monitor command group.
func MonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the escalation monitor",
	}
	cmd.AddCommand(monitorRunCmd())
	return cmd
}

func monitorRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll for blocked items and timed-out delegations until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			monitor := wire.Monitor()
			monitor.Start(NewContext())
			defer monitor.Stop()

			fmt.Println("Monitor running. Press Ctrl+C to stop.")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh

			fmt.Println("Stopping monitor.")
			return nil
		},
	}
}
