package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/foreman/internal/core/escalation"
	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// Monitor periodically scans for blocked work items and timed-out
// delegations and raises escalations for them. One poll runs at a time;
// a tick that arrives while a poll is still running is skipped, not
// queued.
type Monitor struct {
	itemRepo       secondary.WorkItemRepository
	escalationRepo secondary.EscalationRepository
	escalations    primary.EscalationService
	pollInterval   time.Duration
	timeout        time.Duration
	logger         *slog.Logger
	now            func() time.Time

	inFlight atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMonitor creates a Monitor with injected dependencies.
func NewMonitor(
	itemRepo secondary.WorkItemRepository,
	escalationRepo secondary.EscalationRepository,
	escalations primary.EscalationService,
	pollInterval time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) *Monitor {
	return &Monitor{
		itemRepo:       itemRepo,
		escalationRepo: escalationRepo,
		escalations:    escalations,
		pollInterval:   pollInterval,
		timeout:        timeout,
		logger:         logger,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}
}

// Start runs an immediate poll and then polls on every tick until Stop is
// called. The first poll runs inside the monitor goroutine so a slow store
// never blocks the caller.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("monitor started",
		"poll_interval", m.pollInterval,
		"delegation_timeout", m.timeout)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.poll(ctx)
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.poll(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts polling and waits for an in-flight poll's goroutine to exit.
// Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}

// poll runs one scan cycle. The CompareAndSwap guard keeps overlapping
// ticks from running concurrent scans.
func (m *Monitor) poll(ctx context.Context) {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.Warn("previous poll still running, skipping tick")
		return
	}
	defer m.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("monitor poll panicked", "panic", r)
		}
	}()

	if err := m.checkBlockedItems(ctx); err != nil {
		m.logger.Error("blocked item check failed", "err", err)
	}
	if err := m.checkTimedOutDelegations(ctx); err != nil {
		m.logger.Error("delegation timeout check failed", "err", err)
	}
}

// checkBlockedItems raises a blocked escalation for every blocked work item
// that does not already have an unresolved one.
func (m *Monitor) checkBlockedItems(ctx context.Context) error {
	records, err := m.itemRepo.List(ctx, secondary.WorkItemFilters{
		State: string(workitem.StateBlocked),
	})
	if err != nil {
		return fmt.Errorf("failed to list blocked work items: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	open, err := m.openEscalationKeys(ctx)
	if err != nil {
		return err
	}

	for _, r := range records {
		if open[escalationKey{r.ID, escalation.TriggerBlocked}] {
			continue
		}

		item := recordToWorkItem(r)
		target, err := m.escalations.ResolveTarget(ctx, item)
		if err != nil {
			m.logger.Error("target resolution failed", "item", r.ID, "err", err)
			continue
		}
		if target == nil {
			m.logger.Debug("no escalation target for blocked item, skipping", "item", r.ID)
			continue
		}

		_, err = m.escalations.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
			Trigger:    escalation.TriggerBlocked,
			Target:     *target,
			WorkItemID: r.ID,
			SprintID:   r.SprintID,
			Message:    fmt.Sprintf("Work item %s (%s) is blocked and needs attention", r.ID, r.Title),
		})
		if err != nil {
			m.logger.Error("failed to raise blocked escalation", "item", r.ID, "err", err)
			continue
		}
		m.logger.Info("raised blocked escalation", "item", r.ID, "target", target.AgentID)
	}
	return nil
}

// checkTimedOutDelegations raises at most one timeout escalation per work
// item per poll, for the first active delegation past the timeout.
func (m *Monitor) checkTimedOutDelegations(ctx context.Context) error {
	records, err := m.itemRepo.List(ctx, secondary.WorkItemFilters{})
	if err != nil {
		return fmt.Errorf("failed to list work items: %w", err)
	}

	open, err := m.openEscalationKeys(ctx)
	if err != nil {
		return err
	}

	now := m.now().UTC()
	for _, r := range records {
		if open[escalationKey{r.ID, escalation.TriggerTimeout}] {
			continue
		}

		for _, d := range r.Delegations {
			if d.Status != string(workitem.DelegationActive) {
				continue
			}
			delegatedAt, err := time.Parse(time.RFC3339, d.DelegatedAt)
			if err != nil {
				m.logger.Warn("unparsable delegation timestamp, skipping",
					"item", r.ID, "session", d.SessionKey, "delegated_at", d.DelegatedAt)
				continue
			}
			if !escalation.TimedOut(delegatedAt, now, m.timeout) {
				continue
			}

			item := recordToWorkItem(r)
			target, resolveErr := m.escalations.ResolveTarget(ctx, item)
			if resolveErr != nil {
				m.logger.Error("target resolution failed", "item", r.ID, "err", resolveErr)
				break
			}
			if target == nil {
				m.logger.Debug("no escalation target for timed-out delegation, skipping", "item", r.ID)
				break
			}

			_, raiseErr := m.escalations.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
				Trigger:    escalation.TriggerTimeout,
				Target:     *target,
				WorkItemID: r.ID,
				SprintID:   r.SprintID,
				AgentID:    d.ToAgentID,
				Message: fmt.Sprintf("Delegation to %s on work item %s has been active for over %s",
					d.ToAgentID, r.ID, m.timeout),
			})
			if raiseErr != nil {
				m.logger.Error("failed to raise timeout escalation", "item", r.ID, "err", raiseErr)
			} else {
				m.logger.Info("raised timeout escalation", "item", r.ID, "agent", d.ToAgentID)
			}
			// One timeout escalation per item per poll.
			break
		}
	}
	return nil
}

type escalationKey struct {
	workItemID string
	trigger    escalation.Trigger
}

func (m *Monitor) openEscalationKeys(ctx context.Context) (map[escalationKey]bool, error) {
	records, err := m.escalationRepo.ListOpen(ctx, secondary.EscalationFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list open escalations: %w", err)
	}
	keys := make(map[escalationKey]bool, len(records))
	for _, r := range records {
		keys[escalationKey{r.WorkItemID, escalation.Trigger(r.Trigger)}] = true
	}
	return keys, nil
}
