package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/example/foreman/internal/core/escalation"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

func newTestEscalationService() (*EscalationServiceImpl, *mockEscalationRepository, *mockSprintRepository, *mockTeamRepository, *mockNotifier) {
	escRepo := newMockEscalationRepository()
	sprintRepo := newMockSprintRepository()
	teamRepo := newMockTeamRepository()
	notifier := &mockNotifier{}
	service := NewEscalationService(escRepo, sprintRepo, teamRepo, notifier, slog.New(slog.DiscardHandler))
	return service, escRepo, sprintRepo, teamRepo, notifier
}

func seedSprint(repo *mockSprintRepository, id, teamID string) {
	repo.sprints[id] = &secondary.SprintRecord{ID: id, TeamID: teamID, Name: "Sprint " + id, State: "active"}
	repo.order = append(repo.order, id)
}

func TestEscalationService_RaiseEscalation(t *testing.T) {
	service, escRepo, _, _, notifier := newTestEscalationService()
	ctx := context.Background()

	e, err := service.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
		Trigger:    escalation.TriggerBlocked,
		Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
		WorkItemID: "ITEM-001",
		SprintID:   "SPR-001",
		Message:    "Work item ITEM-001 is blocked",
	})
	if err != nil {
		t.Fatalf("RaiseEscalation failed: %v", err)
	}
	if e.ID != "ESC-001" {
		t.Errorf("expected ID ESC-001, got %s", e.ID)
	}
	if e.ResolvedAt != "" {
		t.Error("new escalation must be unresolved")
	}
	if _, ok := escRepo.escalations["ESC-001"]; !ok {
		t.Error("escalation was not persisted")
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0].TargetAgentID != "agent-lead" {
		t.Errorf("expected one delivery to agent-lead, got %+v", notifier.delivered)
	}
}

func TestEscalationService_RaiseEscalation_DeliveryFailureIsNotFatal(t *testing.T) {
	service, escRepo, _, _, notifier := newTestEscalationService()
	notifier.err = errors.New("tmux session gone")

	e, err := service.RaiseEscalation(context.Background(), primary.RaiseEscalationRequest{
		Trigger:    escalation.TriggerBlocked,
		Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
		WorkItemID: "ITEM-001",
		SprintID:   "SPR-001",
	})
	if err != nil {
		t.Fatalf("RaiseEscalation must not fail on delivery errors: %v", err)
	}
	if _, ok := escRepo.escalations[e.ID]; !ok {
		t.Error("escalation must be persisted even when delivery fails")
	}
}

func TestEscalationService_ListOpenEscalations_TeamFilter(t *testing.T) {
	service, _, sprintRepo, _, _ := newTestEscalationService()
	ctx := context.Background()
	seedSprint(sprintRepo, "SPR-001", "TEAM-001")
	seedSprint(sprintRepo, "SPR-002", "TEAM-002")

	for _, sprintID := range []string{"SPR-001", "SPR-002"} {
		if _, err := service.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
			Trigger:    escalation.TriggerBlocked,
			Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
			WorkItemID: "ITEM-001",
			SprintID:   sprintID,
		}); err != nil {
			t.Fatalf("RaiseEscalation failed: %v", err)
		}
	}

	open, err := service.ListOpenEscalations(ctx, primary.EscalationFilters{TeamID: "TEAM-002"})
	if err != nil {
		t.Fatalf("ListOpenEscalations failed: %v", err)
	}
	if len(open) != 1 || open[0].SprintID != "SPR-002" {
		t.Errorf("unexpected team filter result: %+v", open)
	}
}

// failingSprintRepository fails every read with an infrastructure error.
type failingSprintRepository struct {
	*mockSprintRepository
	err error
}

func (r *failingSprintRepository) GetByID(ctx context.Context, id string) (*secondary.SprintRecord, error) {
	return nil, r.err
}

func TestEscalationService_ListOpenEscalations_SprintLoadErrorPropagates(t *testing.T) {
	escRepo := newMockEscalationRepository()
	sprintRepo := &failingSprintRepository{
		mockSprintRepository: newMockSprintRepository(),
		err:                  errors.New("disk I/O error"),
	}
	service := NewEscalationService(escRepo, sprintRepo, newMockTeamRepository(), &mockNotifier{}, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if _, err := service.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
		Trigger:    escalation.TriggerBlocked,
		Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
		WorkItemID: "ITEM-001",
		SprintID:   "SPR-001",
	}); err != nil {
		t.Fatalf("RaiseEscalation failed: %v", err)
	}

	// A broken sprint lookup must surface, not masquerade as "filtered out".
	if _, err := service.ListOpenEscalations(ctx, primary.EscalationFilters{TeamID: "TEAM-001"}); err == nil {
		t.Fatal("expected the sprint load failure to propagate")
	}
}

func TestEscalationService_ListOpenEscalations_MissingSprintIsFilteredOut(t *testing.T) {
	service, _, _, _, _ := newTestEscalationService()
	ctx := context.Background()

	if _, err := service.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
		Trigger:    escalation.TriggerBlocked,
		Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
		WorkItemID: "ITEM-001",
		SprintID:   "SPR-404",
	}); err != nil {
		t.Fatalf("RaiseEscalation failed: %v", err)
	}

	open, err := service.ListOpenEscalations(ctx, primary.EscalationFilters{TeamID: "TEAM-001"})
	if err != nil {
		t.Fatalf("ListOpenEscalations failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("escalation with an unknown sprint should be filtered out, got %+v", open)
	}
}

func TestEscalationService_ResolveEscalation(t *testing.T) {
	service, _, _, _, _ := newTestEscalationService()
	ctx := context.Background()

	e, err := service.RaiseEscalation(ctx, primary.RaiseEscalationRequest{
		Trigger:    escalation.TriggerBlocked,
		Target:     escalation.Target{Kind: escalation.TargetKindAgent, AgentID: "agent-lead"},
		WorkItemID: "ITEM-001",
		SprintID:   "SPR-001",
	})
	if err != nil {
		t.Fatalf("RaiseEscalation failed: %v", err)
	}

	resolved, err := service.ResolveEscalation(ctx, e.ID, "unblocked after rebase")
	if err != nil {
		t.Fatalf("ResolveEscalation failed: %v", err)
	}
	if resolved.ResolvedAt == "" || resolved.Resolution != "unblocked after rebase" {
		t.Errorf("unexpected resolved escalation: %+v", resolved)
	}

	// Resolving twice is an error.
	if _, err := service.ResolveEscalation(ctx, e.ID, "again"); err == nil {
		t.Error("expected error resolving an already resolved escalation")
	}

	open, err := service.ListOpenEscalations(ctx, primary.EscalationFilters{})
	if err != nil {
		t.Fatalf("ListOpenEscalations failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("resolved escalation still listed as open: %+v", open)
	}
}

func TestEscalationService_ResolveEscalation_NotFound(t *testing.T) {
	service, _, _, _, _ := newTestEscalationService()
	_, err := service.ResolveEscalation(context.Background(), "ESC-404", "nope")
	if !primary.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEscalationService_ResolveTarget_ExplicitWins(t *testing.T) {
	service, _, sprintRepo, teamRepo, _ := newTestEscalationService()
	ctx := context.Background()
	seedSprint(sprintRepo, "SPR-001", "TEAM-001")
	teamRepo.teams["TEAM-001"] = &secondary.TeamRecord{
		ID:                "TEAM-001",
		Name:              "Platform",
		Members:           []secondary.TeamMemberRecord{{AgentID: "agent-coord", Role: "coordinator"}},
		EscalationKind:    string(escalation.TargetKindAgent),
		EscalationAgentID: "agent-oncall",
	}

	target, err := service.ResolveTarget(ctx, &primary.WorkItem{ID: "ITEM-001", SprintID: "SPR-001"})
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if target == nil || target.AgentID != "agent-oncall" {
		t.Errorf("explicit team target should win, got %+v", target)
	}
}

func TestEscalationService_ResolveTarget_CoordinatorFallback(t *testing.T) {
	service, _, sprintRepo, teamRepo, _ := newTestEscalationService()
	ctx := context.Background()
	seedSprint(sprintRepo, "SPR-001", "TEAM-001")
	teamRepo.teams["TEAM-001"] = &secondary.TeamRecord{
		ID:   "TEAM-001",
		Name: "Platform",
		Members: []secondary.TeamMemberRecord{
			{AgentID: "agent-dev", Role: "developer"},
			{AgentID: "agent-coord", Role: "coordinator"},
			{AgentID: "agent-coord-2", Role: "coordinator"},
		},
	}

	target, err := service.ResolveTarget(ctx, &primary.WorkItem{ID: "ITEM-001", SprintID: "SPR-001"})
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if target == nil || target.AgentID != "agent-coord" {
		t.Errorf("expected first coordinator, got %+v", target)
	}
}

func TestEscalationService_ResolveTarget_NoTarget(t *testing.T) {
	service, _, sprintRepo, teamRepo, _ := newTestEscalationService()
	ctx := context.Background()
	seedSprint(sprintRepo, "SPR-001", "TEAM-001")
	teamRepo.teams["TEAM-001"] = &secondary.TeamRecord{
		ID:      "TEAM-001",
		Name:    "Platform",
		Members: []secondary.TeamMemberRecord{{AgentID: "agent-dev", Role: "developer"}},
	}

	target, err := service.ResolveTarget(ctx, &primary.WorkItem{ID: "ITEM-001", SprintID: "SPR-001"})
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if target != nil {
		t.Errorf("expected no target, got %+v", target)
	}
}

func TestEscalationService_ResolveTarget_MissingSprint(t *testing.T) {
	service, _, _, _, _ := newTestEscalationService()

	target, err := service.ResolveTarget(context.Background(), &primary.WorkItem{ID: "ITEM-001", SprintID: "SPR-404"})
	if err != nil {
		t.Fatalf("ResolveTarget must not error on a dangling sprint reference: %v", err)
	}
	if target != nil {
		t.Errorf("expected no target for dangling sprint, got %+v", target)
	}
}
