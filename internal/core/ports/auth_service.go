package ports

import (
	"context"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	AccessToken string
	User        *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// IdentityResolver turns the raw Authorization header of a request into a live user.
// Every failure is a *domain.AuthError unless the lookup itself could not run.
type IdentityResolver interface {
	Resolve(ctx context.Context, authorization string) (*domain.User, error)
}
