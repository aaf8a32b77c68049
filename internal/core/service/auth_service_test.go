package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/core/domain"
	"github.com/orgauth/identity-service/internal/core/ports"
)

type authFixture struct {
	users   *stubUserRepo
	orgs    *stubOrgRepo
	tx      *stubTransactor
	hasher  *stubHasher
	codec   *stubCodec
	limiter *stubLimiter
	svc     *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:   newStubUserRepo(),
		orgs:    newStubOrgRepo(),
		tx:      &stubTransactor{},
		hasher:  &stubHasher{},
		codec:   &stubCodec{},
		limiter: newStubLimiter(),
	}
	f.svc = NewAuthService(AuthServiceDeps{
		Users:         f.users,
		Organisations: f.orgs,
		Transactor:    f.tx,
		Hasher:        f.hasher,
		Tokens:        f.codec,
		Limiter:       f.limiter,
	}, zerolog.Nop())
	return f
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  "secret",
		Phone:     "0800",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	res, err := f.svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.ID == "" {
		t.Fatalf("expected generated user id")
	}
	if res.User.PasswordHash != "hashed:secret" {
		t.Fatalf("expected password to be hashed, got %q", res.User.PasswordHash)
	}
	if res.AccessToken != "token:"+res.User.ID {
		t.Fatalf("unexpected token: %q", res.AccessToken)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}

	orgs, _ := f.orgs.ListByMember(context.Background(), res.User.ID)
	if len(orgs) != 1 {
		t.Fatalf("expected one default organisation, got %d", len(orgs))
	}
	if orgs[0].Name != "John's Organisation" {
		t.Fatalf("unexpected organisation name: %q", orgs[0].Name)
	}
	if orgs[0].Description != domain.DefaultOrganisationDescription {
		t.Fatalf("unexpected description: %q", orgs[0].Description)
	}
	if !orgs[0].IsCreator(res.User.ID) {
		t.Fatalf("expected user to be creator of default organisation")
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	f := newAuthFixture()
	in := validRegistration()
	in.Email = "  John@Example.COM "

	res, err := f.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Email != "john@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()
	in := validRegistration()
	in.Password = ""

	_, err := f.svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	in := validRegistration()
	in.Email = "JOHN@example.com"
	_, err := f.svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrRegistrationConflict) {
		t.Fatalf("expected ErrRegistrationConflict, got %v", err)
	}
	if len(f.users.users) != 1 {
		t.Fatalf("expected a single stored user, got %d", len(f.users.users))
	}
}

func TestAuthService_Register_ConflictInsideTransaction(t *testing.T) {
	f := newAuthFixture()
	f.users.createErr = domain.ErrRegistrationConflict

	_, err := f.svc.Register(context.Background(), validRegistration())
	if err != domain.ErrRegistrationConflict {
		t.Fatalf("expected bare ErrRegistrationConflict, got %v", err)
	}
}

func TestAuthService_Register_OrganisationFailure(t *testing.T) {
	f := newAuthFixture()
	f.orgs.createErr = errStoreDown

	_, err := f.svc.Register(context.Background(), validRegistration())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	f := newAuthFixture()
	f.users.findErr = errStoreDown

	_, err := f.svc.Register(context.Background(), validRegistration())
	if !errors.Is(err, errStoreDown) || errors.Is(err, domain.ErrRegistrationConflict) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestAuthService_Register_DefaultOrganisationNamesMayRepeat(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	in := validRegistration()
	in.Email = "other.john@example.com"
	if _, err := f.svc.Register(context.Background(), in); err != nil {
		t.Fatalf("second John should register, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	reg, err := f.svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := f.svc.Login(context.Background(), " JOHN@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("expected user %s, got %s", reg.User.ID, res.User.ID)
	}
	if res.AccessToken != "token:"+reg.User.ID {
		t.Fatalf("unexpected token: %q", res.AccessToken)
	}
	if f.limiter.resets["john@example.com"] != 1 {
		t.Fatalf("expected limiter reset on success")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := f.svc.Login(context.Background(), "john@example.com", "nope")
	if err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if f.limiter.failures["john@example.com"] != 1 {
		t.Fatalf("expected failure to be recorded")
	}
}

func TestAuthService_Login_UnknownEmailStillVerifies(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), "ghost@example.com", "secret")
	if err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if f.hasher.verifyCalls != 1 {
		t.Fatalf("expected a verify call for unknown email, got %d", f.hasher.verifyCalls)
	}
	if f.hasher.lastHash != dummyPasswordHash {
		t.Fatalf("expected dummy hash to be used")
	}
}

func TestAuthService_Login_UnknownEmailUsesConfiguredDummyHash(t *testing.T) {
	f := newAuthFixture()
	f.svc = NewAuthService(AuthServiceDeps{
		Users:         f.users,
		Organisations: f.orgs,
		Transactor:    f.tx,
		Hasher:        f.hasher,
		Tokens:        f.codec,
		DummyHash:     "hashed:unguessable",
	}, zerolog.Nop())

	_, err := f.svc.Login(context.Background(), "ghost@example.com", "secret")
	if err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if f.hasher.lastHash != "hashed:unguessable" {
		t.Fatalf("expected configured dummy hash, got %q", f.hasher.lastHash)
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Login(context.Background(), "", "secret"); err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "john@example.com", ""); err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	f.limiter.blocked = true

	_, err := f.svc.Login(context.Background(), "john@example.com", "secret")
	if err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if f.hasher.verifyCalls != 0 {
		t.Fatalf("throttled attempt must not reach the hasher")
	}
}

func TestAuthService_Login_LimiterErrorFailsOpen(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	f.limiter.err = errStoreDown

	if _, err := f.svc.Login(context.Background(), "john@example.com", "secret"); err != nil {
		t.Fatalf("expected login to succeed when limiter is down, got %v", err)
	}
}

func TestAuthService_Login_WithoutLimiter(t *testing.T) {
	f := newAuthFixture()
	f.svc.limiter = nil
	if _, err := f.svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), "john@example.com", "wrong"); err != domain.ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "john@example.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestAuthService_Login_LookupFailure(t *testing.T) {
	f := newAuthFixture()
	f.users.findErr = errStoreDown

	_, err := f.svc.Login(context.Background(), "john@example.com", "secret")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}
