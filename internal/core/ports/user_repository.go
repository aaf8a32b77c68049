package ports

import (
	"context"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// UserRepository is the persistence collaborator for user identities.
// Lookups return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists a user. A duplicate email yields domain.ErrRegistrationConflict.
	Create(ctx context.Context, user *domain.User) error
}

// Transactor runs fn atomically. Repositories called with the ctx handed to fn
// take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
