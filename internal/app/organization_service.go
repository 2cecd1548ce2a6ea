// Package app contains the application services implementing the primary
// ports, wiring pure core logic to the repository adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// OrganizationServiceImpl implements the OrganizationService interface.
type OrganizationServiceImpl struct {
	orgRepo secondary.OrganizationRepository
	now     func() time.Time
}

// NewOrganizationService creates a new OrganizationService with injected
// dependencies.
func NewOrganizationService(orgRepo secondary.OrganizationRepository) *OrganizationServiceImpl {
	return &OrganizationServiceImpl{orgRepo: orgRepo, now: time.Now}
}

// CreateOrganization creates a new organization.
func (s *OrganizationServiceImpl) CreateOrganization(ctx context.Context, name string) (*primary.Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("organization name required")
	}

	id, err := s.orgRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}

	record := &secondary.OrganizationRecord{
		ID:        id,
		Name:      name,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.orgRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return recordToOrganization(record), nil
}

// GetOrganization retrieves an organization by ID.
func (s *OrganizationServiceImpl) GetOrganization(ctx context.Context, id string) (*primary.Organization, error) {
	record, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, primary.NewNotFound("organization", id)
		}
		return nil, err
	}
	return recordToOrganization(record), nil
}

// ListOrganizations lists all organizations.
func (s *OrganizationServiceImpl) ListOrganizations(ctx context.Context) ([]*primary.Organization, error) {
	records, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	orgs := make([]*primary.Organization, len(records))
	for i, r := range records {
		orgs[i] = recordToOrganization(r)
	}
	return orgs, nil
}

func recordToOrganization(r *secondary.OrganizationRecord) *primary.Organization {
	return &primary.Organization{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

// Ensure OrganizationServiceImpl implements the interface
var _ primary.OrganizationService = (*OrganizationServiceImpl)(nil)
