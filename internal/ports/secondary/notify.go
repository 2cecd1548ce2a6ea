package secondary

import "context"

// Notification carries what a notifier needs to deliver an escalation.
type Notification struct {
	EscalationID  string
	Trigger       string
	TargetAgentID string
	WorkItemID    string
	SprintID      string
	Message       string
}

// EscalationNotifier defines the secondary port for escalation delivery.
// The transport (tmux pane, log line, chat webhook) is an adapter concern.
type EscalationNotifier interface {
	// Notify delivers the escalation to its target. Failures are reported
	// to the caller, which logs and moves on; delivery is best-effort.
	Notify(ctx context.Context, n Notification) error
}
