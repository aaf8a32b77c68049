package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/orgauth/identity-service/internal/api/middleware"
	"github.com/orgauth/identity-service/internal/core/domain"
)

// ctxUser returns the user injected by the Auth middleware. A missing user
// means the route was mounted without the middleware; fail closed.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.ContextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, domain.Unauthenticated(domain.ReasonMissingCredential, nil)
	}
	return user, nil
}

// successResponse is the envelope of every successful API response.
type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, successResponse{Status: "success", Message: message, Data: data})
}

// ErrorResponse is the envelope of every failed API response.
type ErrorResponse struct {
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	StatusCode int          `json:"statusCode"`
	Errors     []FieldError `json:"errors,omitempty"`
}
