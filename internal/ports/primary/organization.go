package primary

import "context"

// Organization is the top-level owner of teams.
type Organization struct {
	ID        string
	Name      string
	CreatedAt string
}

// OrganizationService defines the primary port for organization operations.
type OrganizationService interface {
	// CreateOrganization creates a new organization.
	CreateOrganization(ctx context.Context, name string) (*Organization, error)

	// GetOrganization retrieves an organization by ID.
	GetOrganization(ctx context.Context, id string) (*Organization, error)

	// ListOrganizations lists all organizations.
	ListOrganizations(ctx context.Context) ([]*Organization, error)
}
