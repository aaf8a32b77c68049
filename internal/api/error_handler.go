package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/api/handler"
	"github.com/orgauth/identity-service/internal/core/domain"
)

// Status classifications rendered in the error envelope.
const (
	statusUnauthenticated = "Unauthenticated"
	statusConflict        = "Conflict"
	statusValidation      = "Validation error"
	statusNotFound        = "Not found"
	statusTooManyRequests = "Too many requests"
	statusBadRequest      = "Bad request"
	statusInternal        = "Internal server error"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"status", "message", "statusCode"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := resolveError(err, log, c)
		if body.StatusCode == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(body.StatusCode)
			return
		}
		_ = c.JSON(body.StatusCode, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) handler.ErrorResponse {
	// Resolver rejections carry a specific reason.
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return errorBody(http.StatusUnauthorized, statusUnauthenticated, capitalize(authErr.Reason))
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		body := errorBody(http.StatusUnprocessableEntity, statusValidation, ve.Error())
		body.Errors = ve.Fields
		return body
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAuthenticationFailed), errors.Is(err, domain.ErrUnauthenticated):
		return errorBody(http.StatusUnauthorized, statusUnauthenticated, "Authentication failed")
	case errors.Is(err, domain.ErrTooManyAttempts):
		return errorBody(http.StatusTooManyRequests, statusTooManyRequests, "Too many login attempts, try again later")
	case errors.Is(err, domain.ErrRegistrationConflict):
		return errorBody(http.StatusConflict, statusConflict, "Registration unsuccessful")
	case errors.Is(err, domain.ErrOrganisationExists):
		return errorBody(http.StatusConflict, statusConflict, "Organisation already exists")
	case errors.Is(err, domain.ErrAlreadyMember):
		return errorBody(http.StatusConflict, statusConflict, "User already belongs to organisation")
	case errors.Is(err, domain.ErrUserNotFound):
		return errorBody(http.StatusNotFound, statusNotFound, "User not found")
	case errors.Is(err, domain.ErrOrganisationNotFound):
		return errorBody(http.StatusNotFound, statusNotFound, "Organisation not found")
	case errors.Is(err, domain.ErrValidation):
		return errorBody(http.StatusUnprocessableEntity, statusValidation, validationMessage(err))
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return errorBody(he.Code, classify(he.Code), fmt.Sprintf("%v", he.Message))
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return errorBody(http.StatusInternalServerError, statusInternal, "internal server error")
}

func errorBody(code int, status, message string) handler.ErrorResponse {
	return handler.ErrorResponse{Status: status, Message: message, StatusCode: code}
}

func classify(code int) string {
	switch code {
	case http.StatusBadRequest:
		return statusBadRequest
	case http.StatusUnauthorized:
		return statusUnauthenticated
	case http.StatusNotFound:
		return statusNotFound
	case http.StatusConflict:
		return statusConflict
	case http.StatusUnprocessableEntity:
		return statusValidation
	case http.StatusTooManyRequests:
		return statusTooManyRequests
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return statusInternal
}

// validationMessage drops the operation prefix from a wrapped ErrValidation.
func validationMessage(err error) string {
	if _, detail, ok := strings.Cut(err.Error(), domain.ErrValidation.Error()+": "); ok {
		return detail
	}
	return "Validation failed"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
