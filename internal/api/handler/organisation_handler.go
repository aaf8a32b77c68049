package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orgauth/identity-service/internal/core/domain"
	"github.com/orgauth/identity-service/internal/core/ports"
)

type OrganisationHandler struct {
	orgService ports.OrganisationService
}

func NewOrganisationHandler(orgService ports.OrganisationService) *OrganisationHandler {
	return &OrganisationHandler{orgService: orgService}
}

type createOrganisationRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type addMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type organisationList struct {
	Organisations []*domain.Organisation `json:"organisations"`
}

// List returns the organisations the caller belongs to.
//
// @Summary      List my organisations
// @Tags         organisations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse{data=organisationList}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/organisations [get]
func (h *OrganisationHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	orgs, err := h.orgService.ListForUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Organisations retrieved successfully", organisationList{Organisations: orgs})
}

// Create creates an organisation owned by the caller.
//
// @Summary      Create an organisation
// @Tags         organisations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrganisationRequest  true  "Organisation"
// @Success      201   {object}  successResponse{data=domain.Organisation}
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/organisations [post]
func (h *OrganisationHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createOrganisationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	org, err := h.orgService.Create(c.Request().Context(), ports.CreateOrganisationInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   user.ID,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Organisation created successfully", org)
}

// Get returns a single organisation.
//
// @Summary      Get an organisation
// @Tags         organisations
// @Produce      json
// @Security     BearerAuth
// @Param        orgId  path      string  true  "Organisation ID"
// @Success      200    {object}  successResponse{data=domain.Organisation}
// @Failure      401    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /api/organisations/{orgId} [get]
func (h *OrganisationHandler) Get(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	org, err := h.orgService.Get(c.Request().Context(), c.Param("orgId"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Organisation retrieved successfully", org)
}

// AddMember adds a user to an organisation created by the caller.
//
// @Summary      Add a user to an organisation
// @Tags         organisations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgId  path      string            true  "Organisation ID"
// @Param        body   body      addMemberRequest  true  "User to add"
// @Success      200    {object}  successResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      409    {object}  ErrorResponse
// @Router       /api/organisations/{orgId}/users [post]
func (h *OrganisationHandler) AddMember(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.orgService.AddMember(c.Request().Context(), user.ID, c.Param("orgId"), req.UserID); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User added to organisation successfully", nil)
}
