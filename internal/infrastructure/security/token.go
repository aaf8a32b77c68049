package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/orgauth/identity-service/internal/core/domain"
)

const defaultTokenTTL = 30 * time.Minute

// TokenConfig is the immutable signing configuration, built once at startup.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	DefaultTTL time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// JWTCodec issues and decodes HMAC-signed JWTs. The algorithm is pinned at
// construction: tokens declaring any other "alg" are rejected.
type JWTCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec validates cfg and returns a codec.
func NewJWTCodec(cfg TokenConfig) (*JWTCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: secret is required")
	}
	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &JWTCodec{secret: []byte(cfg.Secret), method: method, ttl: ttl, now: now}, nil
}

// SupportedAlgorithm reports whether alg can be used to sign tokens.
func SupportedAlgorithm(alg string) bool {
	_, err := hmacMethod(alg)
	return err == nil
}

func hmacMethod(alg string) (jwt.SigningMethod, error) {
	if alg == "" {
		return jwt.SigningMethodHS256, nil
	}
	switch strings.ToUpper(alg) {
	case jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("token codec: unsupported algorithm %q", alg)
}

// DefaultTTL is the configured access-token lifetime.
func (c *JWTCodec) DefaultTTL() time.Duration {
	return c.ttl
}

// Issue signs a claim for subject that expires ttl from now. A non-positive
// ttl falls back to DefaultTTL.
func (c *JWTCodec) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	// NumericDate has second precision; round the expiry up so a short ttl
	// never produces a token that is already expired.
	exp := now.Add(ttl)
	if truncated := exp.Truncate(time.Second); truncated.Before(exp) {
		exp = truncated.Add(time.Second)
	}

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
func (c *JWTCodec) Decode(token string) (*domain.Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	out := &domain.Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}

// mapJWTError translates jwt library errors to the codec's failure kinds.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
}
