// Package escalation contains the pure logic for escalation triggers, target
// resolution fallbacks, and delegation timeout detection.
package escalation

import "time"

// Trigger identifies why an escalation was raised.
type Trigger string

const (
	// TriggerBlocked fires for work items sitting in the blocked state.
	TriggerBlocked Trigger = "blocked"
	// TriggerTimeout fires for active delegations older than the configured
	// timeout.
	TriggerTimeout Trigger = "timeout"
)

// TargetKind discriminates the escalation target union. Currently only
// agent targets exist; team and channel kinds are added by convention.
type TargetKind string

const (
	TargetKindAgent TargetKind = "agent"
)

// Target is the resolved recipient of an escalation.
type Target struct {
	Kind    TargetKind
	AgentID string
}

// Member is a team member as seen by target resolution.
type Member struct {
	AgentID string
	Role    string
}

// RoleCoordinator is the member role used as the fallback escalation target.
const RoleCoordinator = "coordinator"

// targetStrategy produces a target from team data, or nil when it cannot.
type targetStrategy func(explicit *Target, members []Member) *Target

// The ordered fallback chain: explicit team target, then first coordinator,
// then none. Adding a further fallback is an append, not a rewrite.
var strategies = []targetStrategy{
	func(explicit *Target, _ []Member) *Target {
		return explicit
	},
	func(_ *Target, members []Member) *Target {
		for _, m := range members {
			if m.Role == RoleCoordinator {
				return &Target{Kind: TargetKindAgent, AgentID: m.AgentID}
			}
		}
		return nil
	},
}

// FallbackTarget resolves the escalation target for a team: the explicit
// team-level target if set, else the first coordinator member, else nil.
// A nil result means "nobody to notify" and is a valid steady state, not an
// error.
func FallbackTarget(explicit *Target, members []Member) *Target {
	for _, strategy := range strategies {
		if t := strategy(explicit, members); t != nil {
			return t
		}
	}
	return nil
}

// TimedOut reports whether a delegation started at delegatedAt has met or
// exceeded the timeout as of now.
func TimedOut(delegatedAt, now time.Time, timeout time.Duration) bool {
	return now.Sub(delegatedAt) >= timeout
}
