package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// DelegationServiceImpl implements the DelegationService interface: it
// records delegation fan-out and reconciles outcomes back into work item
// state via the pure roll-up policy.
type DelegationServiceImpl struct {
	itemRepo secondary.WorkItemRepository
	now      func() time.Time
}

// NewDelegationService creates a new DelegationService with injected
// dependencies.
func NewDelegationService(itemRepo secondary.WorkItemRepository) *DelegationServiceImpl {
	return &DelegationServiceImpl{itemRepo: itemRepo, now: time.Now}
}

// AddDelegation appends an active delegation and moves the item to
// in_progress unconditionally.
func (s *DelegationServiceImpl) AddDelegation(ctx context.Context, req primary.AddDelegationRequest) (*primary.Delegation, error) {
	if req.SessionKey == "" || req.FromAgentID == "" || req.ToAgentID == "" {
		return nil, fmt.Errorf("fromAgentId, toAgentId, and sessionKey required")
	}

	if _, err := s.itemRepo.GetByID(ctx, req.WorkItemID); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", req.WorkItemID)
		}
		return nil, err
	}

	delegatedAt := req.DelegatedAt
	if delegatedAt == "" {
		delegatedAt = s.now().UTC().Format(time.RFC3339)
	}

	record := &secondary.DelegationRecord{
		FromAgentID: req.FromAgentID,
		ToAgentID:   req.ToAgentID,
		DelegatedAt: delegatedAt,
		SessionKey:  req.SessionKey,
		Isolated:    req.Isolated,
		Status:      string(workitem.DelegationActive),
	}
	if err := s.itemRepo.AppendDelegation(ctx, req.WorkItemID, record); err != nil {
		return nil, fmt.Errorf("failed to append delegation: %w", err)
	}

	// Current policy: delegating always marks the item in_progress, even if
	// it was already past that state.
	if err := s.itemRepo.UpdateState(ctx, req.WorkItemID, string(workitem.StateInProgress)); err != nil {
		return nil, fmt.Errorf("failed to update work item state: %w", err)
	}

	d := recordToDelegation(*record)
	return &d, nil
}

// CompleteDelegation finalizes the active delegation matching sessionKey and
// rolls the outcome up into the work item's state.
func (s *DelegationServiceImpl) CompleteDelegation(ctx context.Context, workItemID, sessionKey string, outcome workitem.DelegationStatus, outcomeText string) (*primary.Delegation, error) {
	if !workitem.IsTerminalDelegation(outcome) {
		return nil, fmt.Errorf("invalid delegation outcome: %s (must be completed or failed)", outcome)
	}

	item, err := s.itemRepo.GetByID(ctx, workItemID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("work item", workItemID)
		}
		return nil, err
	}

	// The match is strictly by session key among active delegations; other
	// active delegations under different keys never match.
	var matched *secondary.DelegationRecord
	for i := range item.Delegations {
		d := &item.Delegations[i]
		if d.Status == string(workitem.DelegationActive) && d.SessionKey == sessionKey {
			matched = d
			break
		}
	}
	if matched == nil {
		return nil, primary.NewNotFound("delegation", sessionKey)
	}

	completedAt := s.now().UTC().Format(time.RFC3339)
	if err := s.itemRepo.CompleteDelegation(ctx, workItemID, sessionKey, string(outcome), completedAt, outcomeText); err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("delegation", sessionKey)
		}
		return nil, fmt.Errorf("failed to complete delegation: %w", err)
	}

	activeRemaining := 0
	for _, d := range item.Delegations {
		if d.Status == string(workitem.DelegationActive) && d.SessionKey != sessionKey {
			activeRemaining++
		}
	}

	if rollup := workitem.RollupOutcome(outcome, activeRemaining); rollup.Changed {
		if err := s.itemRepo.UpdateState(ctx, workItemID, string(rollup.NewState)); err != nil {
			return nil, fmt.Errorf("failed to roll up work item state: %w", err)
		}
	}

	matched.Status = string(outcome)
	matched.CompletedAt = completedAt
	matched.Outcome = outcomeText
	d := recordToDelegation(*matched)
	return &d, nil
}

// FindActiveBySessionKey scans all work items for an active delegation with
// the given session key. Returns (nil, nil) when none matches.
func (s *DelegationServiceImpl) FindActiveBySessionKey(ctx context.Context, sessionKey string) (*primary.DelegationMatch, error) {
	records, err := s.itemRepo.List(ctx, secondary.WorkItemFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}

	for _, r := range records {
		for _, d := range r.Delegations {
			if d.Status == string(workitem.DelegationActive) && d.SessionKey == sessionKey {
				match := recordToDelegation(d)
				return &primary.DelegationMatch{WorkItemID: r.ID, Delegation: &match}, nil
			}
		}
	}
	return nil, nil
}

// CompleteBySessionKey is the session-ended hook: reverse lookup plus
// completion with an outcome message derived from ok/reason.
func (s *DelegationServiceImpl) CompleteBySessionKey(ctx context.Context, sessionKey string, ok bool, reason string) (*primary.DelegationMatch, error) {
	match, err := s.FindActiveBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	outcome := workitem.DelegationCompleted
	outcomeText := "Delegation completed successfully."
	if !ok {
		outcome = workitem.DelegationFailed
		if reason == "" {
			reason = "unknown"
		}
		outcomeText = fmt.Sprintf("Delegation ended: %s", reason)
	}

	completed, err := s.CompleteDelegation(ctx, match.WorkItemID, sessionKey, outcome, outcomeText)
	if err != nil {
		return nil, err
	}
	return &primary.DelegationMatch{WorkItemID: match.WorkItemID, Delegation: completed}, nil
}

// Ensure DelegationServiceImpl implements the interface
var _ primary.DelegationService = (*DelegationServiceImpl)(nil)
