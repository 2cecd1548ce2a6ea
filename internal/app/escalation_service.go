package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/foreman/internal/core/escalation"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// EscalationServiceImpl implements the EscalationService interface.
type EscalationServiceImpl struct {
	escalationRepo secondary.EscalationRepository
	sprintRepo     secondary.SprintRepository
	teamRepo       secondary.TeamRepository
	notifier       secondary.EscalationNotifier
	logger         *slog.Logger
	now            func() time.Time
}

// NewEscalationService creates a new EscalationService with injected
// dependencies.
func NewEscalationService(
	escalationRepo secondary.EscalationRepository,
	sprintRepo secondary.SprintRepository,
	teamRepo secondary.TeamRepository,
	notifier secondary.EscalationNotifier,
	logger *slog.Logger,
) *EscalationServiceImpl {
	return &EscalationServiceImpl{
		escalationRepo: escalationRepo,
		sprintRepo:     sprintRepo,
		teamRepo:       teamRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// RaiseEscalation persists a new unresolved escalation and delivers it
// through the notifier. Delivery failure is logged, never surfaced.
func (s *EscalationServiceImpl) RaiseEscalation(ctx context.Context, req primary.RaiseEscalationRequest) (*primary.Escalation, error) {
	id, err := s.escalationRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate escalation ID: %w", err)
	}

	record := &secondary.EscalationRecord{
		ID:            id,
		Trigger:       string(req.Trigger),
		TargetKind:    string(req.Target.Kind),
		TargetAgentID: req.Target.AgentID,
		WorkItemID:    req.WorkItemID,
		SprintID:      req.SprintID,
		AgentID:       req.AgentID,
		Message:       req.Message,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.escalationRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create escalation: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, secondary.Notification{
			EscalationID:  record.ID,
			Trigger:       record.Trigger,
			TargetAgentID: record.TargetAgentID,
			WorkItemID:    record.WorkItemID,
			SprintID:      record.SprintID,
			Message:       record.Message,
		}); err != nil {
			s.logger.Error("escalation delivery failed", "escalation", record.ID, "err", err)
		}
	}

	return recordToEscalation(record), nil
}

// ListOpenEscalations lists unresolved escalations with optional filters.
// The teamId filter is resolved through each escalation's sprint.
func (s *EscalationServiceImpl) ListOpenEscalations(ctx context.Context, filters primary.EscalationFilters) ([]*primary.Escalation, error) {
	records, err := s.escalationRepo.ListOpen(ctx, secondary.EscalationFilters{
		SprintID: filters.SprintID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}

	escalations := make([]*primary.Escalation, 0, len(records))
	for _, r := range records {
		if filters.TeamID != "" {
			sp, err := s.sprintRepo.GetByID(ctx, r.SprintID)
			if errors.Is(err, secondary.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load sprint %s: %w", r.SprintID, err)
			}
			if sp.TeamID != filters.TeamID {
				continue
			}
		}
		escalations = append(escalations, recordToEscalation(r))
	}
	return escalations, nil
}

// ResolveEscalation stamps resolvedAt and the resolution text.
func (s *EscalationServiceImpl) ResolveEscalation(ctx context.Context, id, resolution string) (*primary.Escalation, error) {
	record, err := s.escalationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("escalation", id)
		}
		return nil, err
	}
	if record.ResolvedAt != "" {
		return nil, fmt.Errorf("escalation %s is already resolved", id)
	}

	resolvedAt := s.now().UTC().Format(time.RFC3339)
	if err := s.escalationRepo.Resolve(ctx, id, resolution, resolvedAt); err != nil {
		return nil, fmt.Errorf("failed to resolve escalation: %w", err)
	}

	record.ResolvedAt = resolvedAt
	record.Resolution = resolution
	return recordToEscalation(record), nil
}

// ResolveTarget walks work item -> sprint -> team and applies the fallback
// chain. A (nil, nil) result means nobody can be notified; callers skip the
// escalation silently.
func (s *EscalationServiceImpl) ResolveTarget(ctx context.Context, item *primary.WorkItem) (*escalation.Target, error) {
	sp, err := s.sprintRepo.GetByID(ctx, item.SprintID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sprint: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, sp.TeamID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	var explicit *escalation.Target
	if team.EscalationKind != "" {
		explicit = &escalation.Target{
			Kind:    escalation.TargetKind(team.EscalationKind),
			AgentID: team.EscalationAgentID,
		}
	}

	members := make([]escalation.Member, len(team.Members))
	for i, m := range team.Members {
		members[i] = escalation.Member{AgentID: m.AgentID, Role: m.Role}
	}

	return escalation.FallbackTarget(explicit, members), nil
}

func recordToEscalation(r *secondary.EscalationRecord) *primary.Escalation {
	return &primary.Escalation{
		ID:      r.ID,
		Trigger: escalation.Trigger(r.Trigger),
		Target: escalation.Target{
			Kind:    escalation.TargetKind(r.TargetKind),
			AgentID: r.TargetAgentID,
		},
		WorkItemID: r.WorkItemID,
		SprintID:   r.SprintID,
		AgentID:    r.AgentID,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
		Resolution: r.Resolution,
	}
}

// Ensure EscalationServiceImpl implements the interface
var _ primary.EscalationService = (*EscalationServiceImpl)(nil)
