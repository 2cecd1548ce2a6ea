package workitem

// RollupResult captures the work item state change implied by a delegation
// outcome, if any.
type RollupResult struct {
	NewState State
	Changed  bool
}

// RollupOutcome applies the delegation roll-up policy after one delegation
// reaches a terminal status:
//
//   - failed blocks the item immediately, even while other delegations are
//     still active (failure is load-bearing and short-circuits)
//   - completed moves the item to in_review only once no delegations remain
//     active (success requires all fan-out branches to resolve)
//
// activeRemaining is the number of delegations still active after the
// outcome was recorded.
func RollupOutcome(outcome DelegationStatus, activeRemaining int) RollupResult {
	switch outcome {
	case DelegationFailed:
		return RollupResult{NewState: StateBlocked, Changed: true}
	case DelegationCompleted:
		if activeRemaining == 0 {
			return RollupResult{NewState: StateInReview, Changed: true}
		}
		return RollupResult{}
	default:
		return RollupResult{}
	}
}
