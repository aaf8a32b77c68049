package ports

import (
	"context"
	"time"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords.
// Verify reports (false, nil) for a mismatch or a malformed hash; an error means
// the check could not run at all (cancelled context, hasher shut down).
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenCodec issues and decodes signed, expiring identity tokens.
// Decode fails with domain.ErrMalformedToken, domain.ErrBadSignature or domain.ErrTokenExpired.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Decode(token string) (*domain.Claims, error)
	DefaultTTL() time.Duration
}

// LoginLimiter throttles failed login attempts per account key.
type LoginLimiter interface {
	// Allowed reports whether another attempt may be made for key.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt for key.
	Fail(ctx context.Context, key string) error
	// Reset clears the failure counter for key.
	Reset(ctx context.Context, key string) error
}
