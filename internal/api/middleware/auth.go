package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/orgauth/identity-service/internal/core/ports"
)

// ContextKeyUser is the echo context key holding the authenticated *domain.User.
const ContextKeyUser = "user"

// Auth resolves the bearer token of every request into a user and stores it
// under ContextKeyUser. Rejections are returned unchanged so the HTTP error
// handler can render them as 401.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolver.Resolve(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}
