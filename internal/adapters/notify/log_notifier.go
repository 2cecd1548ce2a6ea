// Package notify contains the fallback escalation notifier used when no
// tmux target is configured.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/foreman/internal/ports/secondary"
)

// LogNotifier implements secondary.EscalationNotifier by logging the
// escalation. Delivery to a human happens out of band.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the escalation at warn level.
func (n *LogNotifier) Notify(ctx context.Context, note secondary.Notification) error {
	n.logger.Warn("escalation raised",
		"escalation", note.EscalationID,
		"trigger", note.Trigger,
		"target", note.TargetAgentID,
		"item", note.WorkItemID,
		"sprint", note.SprintID,
		"message", note.Message)
	return nil
}

// Ensure LogNotifier implements the interface
var _ secondary.EscalationNotifier = (*LogNotifier)(nil)
