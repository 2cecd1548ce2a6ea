package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/gateway"
	"github.com/example/foreman/internal/wire"
)

// ServeCmd returns the serve command, hosting the git webhook endpoint.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the git webhook endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			withMonitor, _ := cmd.Flags().GetBool("with-monitor")

			if addr == "" {
				addr = wire.Config().ListenAddr
			}

			if withMonitor {
				monitor := wire.Monitor()
				monitor.Start(NewContext())
				defer monitor.Stop()
			}

			server := gateway.NewServer(addr, wire.GitWebhook())

			errCh := make(chan error, 1)
			go func() {
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			fmt.Printf("Listening on %s%s\n", addr, gateway.GitWebhookPath)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-sigCh:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (defaults to the configured listen_addr)")
	cmd.Flags().Bool("with-monitor", false, "Also run the escalation monitor")
	return cmd
}
