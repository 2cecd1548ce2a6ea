// Package tmux delivers escalation notifications into a running tmux
// session, the place where agents actually live.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/foreman/internal/ports/secondary"
)

// Notifier implements secondary.EscalationNotifier by writing the
// escalation message into the target tmux pane.
type Notifier struct {
	tmux   *gotmux.Tmux
	target string
}

// NewNotifier creates a tmux notifier for the given target (a session
// name, optionally with window and pane, e.g. "agents:0.1").
func NewNotifier(target string) (*Notifier, error) {
	client, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &Notifier{tmux: client, target: target}, nil
}

// Notify delivers an escalation into the target pane. The message is typed
// as keystrokes followed by Enter so an agent REPL picks it up as input.
func (n *Notifier) Notify(ctx context.Context, note secondary.Notification) error {
	if !n.sessionExists() {
		return fmt.Errorf("tmux target %s not found", n.target)
	}

	text := fmt.Sprintf("[%s] escalation %s for %s (%s): %s",
		note.Trigger, note.EscalationID, note.TargetAgentID, note.WorkItemID, note.Message)

	cmd := exec.CommandContext(ctx, "tmux", "send-keys", "-t", n.target, text, "C-m")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send keys to %s: %w", n.target, err)
	}
	return nil
}

func (n *Notifier) sessionExists() bool {
	sessions, err := n.tmux.ListSessions()
	if err != nil {
		return false
	}
	name, _, _ := strings.Cut(n.target, ":")
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Ensure Notifier implements the interface
var _ secondary.EscalationNotifier = (*Notifier)(nil)
