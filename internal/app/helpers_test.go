package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/foreman/internal/ports/secondary"
)

// Shared map-backed mock repositories for the service tests in this
// package. Lists preserve insertion order so assertions stay simple.

// mockOrganizationRepository implements secondary.OrganizationRepository.
type mockOrganizationRepository struct {
	orgs   map[string]*secondary.OrganizationRecord
	order  []string
	nextID int
}

func newMockOrganizationRepository() *mockOrganizationRepository {
	return &mockOrganizationRepository{
		orgs:   make(map[string]*secondary.OrganizationRecord),
		nextID: 1,
	}
}

func (m *mockOrganizationRepository) Create(ctx context.Context, org *secondary.OrganizationRecord) error {
	m.orgs[org.ID] = org
	m.order = append(m.order, org.ID)
	return nil
}

func (m *mockOrganizationRepository) GetByID(ctx context.Context, id string) (*secondary.OrganizationRecord, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockOrganizationRepository) List(ctx context.Context) ([]*secondary.OrganizationRecord, error) {
	result := make([]*secondary.OrganizationRecord, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.orgs[id])
	}
	return result, nil
}

func (m *mockOrganizationRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("ORG-%03d", id), nil
}

// mockTeamRepository implements secondary.TeamRepository.
type mockTeamRepository struct {
	teams  map[string]*secondary.TeamRecord
	order  []string
	nextID int
}

func newMockTeamRepository() *mockTeamRepository {
	return &mockTeamRepository{
		teams:  make(map[string]*secondary.TeamRecord),
		nextID: 1,
	}
}

func (m *mockTeamRepository) Create(ctx context.Context, team *secondary.TeamRecord) error {
	m.teams[team.ID] = team
	m.order = append(m.order, team.ID)
	return nil
}

func (m *mockTeamRepository) GetByID(ctx context.Context, id string) (*secondary.TeamRecord, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockTeamRepository) List(ctx context.Context, filters secondary.TeamFilters) ([]*secondary.TeamRecord, error) {
	var result []*secondary.TeamRecord
	for _, id := range m.order {
		t := m.teams[id]
		if filters.OrganizationID != "" && t.OrganizationID != filters.OrganizationID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTeamRepository) UpsertMember(ctx context.Context, teamID string, member secondary.TeamMemberRecord) error {
	t, ok := m.teams[teamID]
	if !ok {
		return secondary.ErrNotFound
	}
	for i, existing := range t.Members {
		if existing.AgentID == member.AgentID {
			t.Members[i].Role = member.Role
			return nil
		}
	}
	t.Members = append(t.Members, member)
	return nil
}

func (m *mockTeamRepository) SetEscalationTarget(ctx context.Context, teamID, kind, agentID string) error {
	t, ok := m.teams[teamID]
	if !ok {
		return secondary.ErrNotFound
	}
	t.EscalationKind = kind
	t.EscalationAgentID = agentID
	return nil
}

func (m *mockTeamRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("TEAM-%03d", id), nil
}

// mockSprintRepository implements secondary.SprintRepository.
type mockSprintRepository struct {
	sprints map[string]*secondary.SprintRecord
	order   []string
	nextID  int
}

func newMockSprintRepository() *mockSprintRepository {
	return &mockSprintRepository{
		sprints: make(map[string]*secondary.SprintRecord),
		nextID:  1,
	}
}

func (m *mockSprintRepository) Create(ctx context.Context, sprint *secondary.SprintRecord) error {
	m.sprints[sprint.ID] = sprint
	m.order = append(m.order, sprint.ID)
	return nil
}

func (m *mockSprintRepository) GetByID(ctx context.Context, id string) (*secondary.SprintRecord, error) {
	if s, ok := m.sprints[id]; ok {
		return s, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockSprintRepository) List(ctx context.Context, filters secondary.SprintFilters) ([]*secondary.SprintRecord, error) {
	var result []*secondary.SprintRecord
	for _, id := range m.order {
		s := m.sprints[id]
		if filters.TeamID != "" && s.TeamID != filters.TeamID {
			continue
		}
		if filters.State != "" && s.State != filters.State {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (m *mockSprintRepository) UpdateState(ctx context.Context, id, state string) error {
	s, ok := m.sprints[id]
	if !ok {
		return secondary.ErrNotFound
	}
	s.State = state
	return nil
}

func (m *mockSprintRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("SPR-%03d", id), nil
}

// mockWorkItemRepository implements secondary.WorkItemRepository.
type mockWorkItemRepository struct {
	items        map[string]*secondary.WorkItemRecord
	order        []string
	sprintExists map[string]bool
	nextID       int
	nextReviewID int
}

func newMockWorkItemRepository() *mockWorkItemRepository {
	return &mockWorkItemRepository{
		items:        make(map[string]*secondary.WorkItemRecord),
		sprintExists: make(map[string]bool),
		nextID:       1,
		nextReviewID: 1,
	}
}

func (m *mockWorkItemRepository) Create(ctx context.Context, item *secondary.WorkItemRecord) error {
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return nil
}

func (m *mockWorkItemRepository) GetByID(ctx context.Context, id string) (*secondary.WorkItemRecord, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockWorkItemRepository) Update(ctx context.Context, item *secondary.WorkItemRecord) error {
	stored, ok := m.items[item.ID]
	if !ok {
		return secondary.ErrNotFound
	}
	if item.Title != "" {
		stored.Title = item.Title
	}
	if item.Description != "" {
		stored.Description = item.Description
	}
	if item.AssigneeAgentID != "" {
		stored.AssigneeAgentID = item.AssigneeAgentID
	}
	return nil
}

func (m *mockWorkItemRepository) UpdateState(ctx context.Context, id, state string) error {
	i, ok := m.items[id]
	if !ok {
		return secondary.ErrNotFound
	}
	i.State = state
	return nil
}

func (m *mockWorkItemRepository) List(ctx context.Context, filters secondary.WorkItemFilters) ([]*secondary.WorkItemRecord, error) {
	var result []*secondary.WorkItemRecord
	for _, id := range m.order {
		i := m.items[id]
		if filters.SprintID != "" && i.SprintID != filters.SprintID {
			continue
		}
		if filters.State != "" && i.State != filters.State {
			continue
		}
		result = append(result, i)
	}
	return result, nil
}

func (m *mockWorkItemRepository) ListIDsBySprint(ctx context.Context, sprintID string) ([]string, error) {
	var ids []string
	for _, id := range m.order {
		if m.items[id].SprintID == sprintID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockWorkItemRepository) AppendDelegation(ctx context.Context, workItemID string, d *secondary.DelegationRecord) error {
	i, ok := m.items[workItemID]
	if !ok {
		return secondary.ErrNotFound
	}
	i.Delegations = append(i.Delegations, *d)
	return nil
}

func (m *mockWorkItemRepository) CompleteDelegation(ctx context.Context, workItemID, sessionKey, status, completedAt, outcome string) error {
	i, ok := m.items[workItemID]
	if !ok {
		return secondary.ErrNotFound
	}
	for idx := range i.Delegations {
		d := &i.Delegations[idx]
		if d.Status == "active" && d.SessionKey == sessionKey {
			d.Status = status
			d.CompletedAt = completedAt
			d.Outcome = outcome
			return nil
		}
	}
	return secondary.ErrNotFound
}

func (m *mockWorkItemRepository) AppendReview(ctx context.Context, workItemID string, r *secondary.ReviewRecord) error {
	i, ok := m.items[workItemID]
	if !ok {
		return secondary.ErrNotFound
	}
	i.Reviews = append(i.Reviews, *r)
	return nil
}

func (m *mockWorkItemRepository) UpdateReview(ctx context.Context, reviewID, status, feedback, decidedAt string) error {
	for _, id := range m.order {
		i := m.items[id]
		for idx := range i.Reviews {
			r := &i.Reviews[idx]
			if r.ID == reviewID {
				r.Status = status
				r.Feedback = feedback
				r.DecidedAt = decidedAt
				return nil
			}
		}
	}
	return secondary.ErrNotFound
}

func (m *mockWorkItemRepository) SprintExists(ctx context.Context, sprintID string) (bool, error) {
	return m.sprintExists[sprintID], nil
}

func (m *mockWorkItemRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("ITEM-%03d", id), nil
}

func (m *mockWorkItemRepository) GetNextReviewID(ctx context.Context) (string, error) {
	id := m.nextReviewID
	m.nextReviewID++
	return fmt.Sprintf("REV-%03d", id), nil
}

// mockEscalationRepository implements secondary.EscalationRepository.
type mockEscalationRepository struct {
	escalations map[string]*secondary.EscalationRecord
	order       []string
	nextID      int
}

func newMockEscalationRepository() *mockEscalationRepository {
	return &mockEscalationRepository{
		escalations: make(map[string]*secondary.EscalationRecord),
		nextID:      1,
	}
}

func (m *mockEscalationRepository) Create(ctx context.Context, e *secondary.EscalationRecord) error {
	m.escalations[e.ID] = e
	m.order = append(m.order, e.ID)
	return nil
}

func (m *mockEscalationRepository) GetByID(ctx context.Context, id string) (*secondary.EscalationRecord, error) {
	if e, ok := m.escalations[id]; ok {
		return e, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockEscalationRepository) ListOpen(ctx context.Context, filters secondary.EscalationFilters) ([]*secondary.EscalationRecord, error) {
	var result []*secondary.EscalationRecord
	for _, id := range m.order {
		e := m.escalations[id]
		if e.ResolvedAt != "" {
			continue
		}
		if filters.SprintID != "" && e.SprintID != filters.SprintID {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *mockEscalationRepository) Resolve(ctx context.Context, id, resolution, resolvedAt string) error {
	e, ok := m.escalations[id]
	if !ok {
		return secondary.ErrNotFound
	}
	e.Resolution = resolution
	e.ResolvedAt = resolvedAt
	return nil
}

func (m *mockEscalationRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("ESC-%03d", id), nil
}

// mockNotifier records delivered notifications and can be told to fail.
type mockNotifier struct {
	delivered []secondary.Notification
	err       error
}

func (m *mockNotifier) Notify(ctx context.Context, n secondary.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, n)
	return nil
}

// fixedClock returns a deterministic now func for services under test.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedWorkItem inserts a work item directly into the mock repository.
func seedWorkItem(repo *mockWorkItemRepository, id, sprintID, state string) *secondary.WorkItemRecord {
	item := &secondary.WorkItemRecord{
		ID:        id,
		SprintID:  sprintID,
		Title:     "Item " + id,
		State:     state,
		CreatedAt: "2026-08-01T00:00:00Z",
		UpdatedAt: "2026-08-01T00:00:00Z",
	}
	repo.items[id] = item
	repo.order = append(repo.order, id)
	return item
}
