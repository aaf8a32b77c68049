package ports

import (
	"context"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// CreateOrganisationInput carries the data needed to create an organisation.
type CreateOrganisationInput struct {
	Name        string
	Description string
	CreatorID   string
}

// OrganisationService defines the organisation use cases available to authenticated users.
type OrganisationService interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Organisation, error)
	Create(ctx context.Context, input CreateOrganisationInput) (*domain.Organisation, error)
	Get(ctx context.Context, orgID string) (*domain.Organisation, error)
	// AddMember adds userID to orgID on behalf of callerID, who must be the creator.
	AddMember(ctx context.Context, callerID, orgID, userID string) error
}

// UserService exposes read access to user records.
type UserService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}
