package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/core/domain"
	"github.com/orgauth/identity-service/internal/core/ports"
	"github.com/orgauth/identity-service/internal/pkg/metrics"
)

const bearerScheme = "bearer"

// IdentityResolver authenticates requests carrying a bearer access token.
type IdentityResolver struct {
	tokens ports.TokenCodec
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewIdentityResolver(tokens ports.TokenCodec, users ports.UserRepository, log zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users, log: log}
}

// Resolve parses an Authorization header value of the form "Bearer <token>",
// decodes the token and loads the user named by its subject.
func (r *IdentityResolver) Resolve(ctx context.Context, authorization string) (*domain.User, error) {
	user, err := r.resolve(ctx, authorization)

	var authErr *domain.AuthError
	switch {
	case err == nil:
		metrics.IdentityResolutionsTotal.WithLabelValues("ok").Inc()
	case errors.As(err, &authErr):
		metrics.IdentityResolutionsTotal.WithLabelValues(authErr.Reason).Inc()
		r.log.Debug().Err(err).Msg("request not authenticated")
	default:
		metrics.IdentityResolutionsTotal.WithLabelValues("error").Inc()
	}
	return user, err
}

func (r *IdentityResolver) resolve(ctx context.Context, authorization string) (*domain.User, error) {
	header := strings.TrimSpace(authorization)
	if header == "" {
		return nil, domain.Unauthenticated(domain.ReasonMissingCredential, nil)
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return nil, domain.Unauthenticated(domain.ReasonMalformedCredential, nil)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.Unauthenticated(domain.ReasonMalformedCredential, nil)
	}

	claims, err := r.tokens.Decode(token)
	if err != nil {
		return nil, domain.Unauthenticated(domain.ReasonInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, domain.Unauthenticated(domain.ReasonInvalidPayload, nil)
	}

	user, err := r.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthenticated(domain.ReasonUserNotFound, nil)
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user, nil
}
