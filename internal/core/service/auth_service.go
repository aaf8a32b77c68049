package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/core/domain"
	"github.com/orgauth/identity-service/internal/core/ports"
	"github.com/orgauth/identity-service/internal/pkg/metrics"
)

// dummyPasswordHash is verified against when the email is unknown so that the
// response time does not reveal whether an account exists. It matches no password
// and is a cost-10 hash; AuthServiceDeps.DummyHash replaces it for other costs.
//
//nolint:gosec // G101: not a credential.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2Z3mTeL6xB6UtGyj0BBOfKu"

// AuthServiceDeps groups the collaborators of AuthService.
type AuthServiceDeps struct {
	Users         ports.UserRepository
	Organisations ports.OrganisationRepository
	Transactor    ports.Transactor
	Hasher        ports.PasswordHasher
	Tokens        ports.TokenCodec
	// Limiter is optional; nil disables login throttling.
	Limiter ports.LoginLimiter
	// DummyHash should be produced by the same hasher and cost as stored
	// passwords. Empty falls back to dummyPasswordHash.
	DummyHash string
}

// AuthService implements registration and login.
type AuthService struct {
	users   ports.UserRepository
	orgs    ports.OrganisationRepository
	tx      ports.Transactor
	hasher  ports.PasswordHasher
	tokens  ports.TokenCodec
	limiter ports.LoginLimiter
	dummy   string
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(deps AuthServiceDeps, log zerolog.Logger) *AuthService {
	dummy := deps.DummyHash
	if dummy == "" {
		dummy = dummyPasswordHash
	}
	return &AuthService{
		users:   deps.Users,
		orgs:    deps.Organisations,
		tx:      deps.Transactor,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		limiter: deps.Limiter,
		dummy:   dummy,
		log:     log,
		now:     time.Now,
	}
}

// Register creates the user, their default organisation and the membership
// linking them in one transaction, then issues an access token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("register: %w: firstName, lastName, email and password are required", domain.ErrValidation)
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("register: %w: password must be at most %d bytes", domain.ErrValidation, domain.MaxPasswordBytes)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.ErrRegistrationConflict
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CreatedAt:    now,
	}
	org := &domain.Organisation{
		ID:          uuid.NewString(),
		Name:        domain.DefaultOrganisationName(user.FirstName),
		Description: domain.DefaultOrganisationDescription,
		CreatorID:   user.ID,
		CreatedAt:   now,
	}
	membership := &domain.Membership{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		OrgID:     org.ID,
		CreatedAt: now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if err := s.orgs.Create(ctx, org); err != nil {
			return fmt.Errorf("create default organisation: %w", err)
		}
		if err := s.orgs.AddMember(ctx, membership); err != nil {
			return fmt.Errorf("create default membership: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationConflict) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, domain.ErrRegistrationConflict
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, s.tokens.DefaultTTL())
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("org_id", org.ID).Msg("user registered")

	return &ports.AuthResult{AccessToken: token, User: user}, nil
}

// Login verifies the credentials and issues an access token. An unknown email
// and a wrong password fail identically with domain.ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failed").Inc()
		return nil, domain.ErrAuthenticationFailed
	}

	if !s.attemptAllowed(ctx, email) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	targetHash := s.dummy
	switch {
	case err == nil:
		targetHash = user.PasswordHash
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	// Always verify so that both failure paths cost the same.
	valid, err := s.hasher.Verify(ctx, password, targetHash)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !valid {
		s.recordFailure(ctx, email)
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failed").Inc()
		return nil, domain.ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user.ID, s.tokens.DefaultTTL())
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	s.resetFailures(ctx, email)
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{AccessToken: token, User: user}, nil
}

// attemptAllowed consults the limiter. Limiter failures fail open.
func (s *AuthService) attemptAllowed(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return true
	}
	allowed, err := s.limiter.Allowed(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter check failed, allowing attempt")
		return true
	}
	return allowed
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetFailures(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login failures")
	}
}
