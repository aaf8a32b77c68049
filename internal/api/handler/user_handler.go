package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgauth/identity-service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get returns the public profile of a user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  successResponse{data=domain.PublicUser}
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /api/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	user, err := h.userService.Get(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User data fetched successfully", user.Public())
}
