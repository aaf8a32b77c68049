package domain

import "errors"

// Authentication and token failures.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTooManyAttempts      = errors.New("too many login attempts")

	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// Registration, lookup and membership failures.
var (
	ErrRegistrationConflict = errors.New("registration conflict")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganisationNotFound = errors.New("organisation not found")
	ErrOrganisationExists   = errors.New("organisation already exists")
	ErrAlreadyMember        = errors.New("user already belongs to organisation")
	ErrValidation           = errors.New("validation failed")
)

// Reasons reported by the identity resolver.
const (
	ReasonMissingCredential   = "missing credential"
	ReasonMalformedCredential = "malformed credential"
	ReasonInvalidToken        = "invalid token"
	ReasonInvalidPayload      = "invalid token payload"
	ReasonUserNotFound        = "user not found"
)

// AuthError is an Unauthenticated failure with a human-readable reason.
// errors.Is(err, ErrUnauthenticated) holds for every AuthError.
type AuthError struct {
	Reason string
	Err    error
}

// Unauthenticated builds an AuthError for reason, optionally keeping the cause for logs.
func Unauthenticated(reason string, cause error) *AuthError {
	return &AuthError{Reason: reason, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "unauthenticated: " + e.Reason + ": " + e.Err.Error()
	}
	return "unauthenticated: " + e.Reason
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthenticated
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
