// Package cli provides the CLI commands for the foreman application.
package cli

import (
	"context"
)

// NewContext creates the base context for CLI command execution.
func NewContext() context.Context {
	return context.Background()
}
