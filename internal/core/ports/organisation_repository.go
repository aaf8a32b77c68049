package ports

import (
	"context"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// OrganisationRepository persists organisations and their memberships.
// Names are not unique at the storage level: every default organisation of a
// "John" is called "John's Organisation".
type OrganisationRepository interface {
	Create(ctx context.Context, org *domain.Organisation) error
	// FindByID and FindByName return domain.ErrOrganisationNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Organisation, error)
	FindByName(ctx context.Context, name string) (*domain.Organisation, error)
	// ListByMember returns every organisation userID belongs to, oldest first.
	ListByMember(ctx context.Context, userID string) ([]*domain.Organisation, error)
	// AddMember persists a membership. An existing pair yields domain.ErrAlreadyMember.
	AddMember(ctx context.Context, m *domain.Membership) error
	IsMember(ctx context.Context, userID, orgID string) (bool, error)
}
