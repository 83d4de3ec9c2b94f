package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-planner/internal/api/dto"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/service"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// DirectoryHandler manages organization, team and employee endpoints,
// including their cascade deletions.
type DirectoryHandler struct {
	directory *service.DirectoryService
	cascades  *service.CascadeService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService, cascades *service.CascadeService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, cascades: cascades}
}

// CreateOrganization POST /organizations.
func (h *DirectoryHandler) CreateOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	org, err := h.directory.CreateOrganization(c.UserContext(), principal.ScopeSubject(), service.CreateOrganizationInput{
		Name:     req.Name,
		PlanTier: req.PlanTier,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Organization(org)})
}

// ListOrganizations GET /organizations.
func (h *DirectoryHandler) ListOrganizations(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	orgs, err := h.directory.ListOrganizations(c.UserContext(), principal.ScopeSubject())
	if err != nil {
		return err
	}
	items := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, dto.Organization(&orgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetOrganization GET /organizations/:id.
func (h *DirectoryHandler) GetOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	org, err := h.directory.GetOrganization(c.UserContext(), principal.ScopeSubject(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Organization(org)})
}

// DeleteOrganization DELETE /organizations/:id.
func (h *DirectoryHandler) DeleteOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cascades.DeleteOrganization(c.UserContext(), principal.ScopeSubject(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// CreateTeam POST /teams.
func (h *DirectoryHandler) CreateTeam(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.directory.CreateTeam(c.UserContext(), principal.ScopeSubject(), service.CreateTeamInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		ManagerIDs:     req.ManagerIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Team(team)})
}

// ListTeams GET /teams.
func (h *DirectoryHandler) ListTeams(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	teams, err := h.directory.ListTeams(c.UserContext(), principal.ScopeSubject(), c.Query("organization_id"))
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, dto.Team(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTeam GET /teams/:id.
func (h *DirectoryHandler) GetTeam(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	team, err := h.directory.GetTeam(c.UserContext(), principal.ScopeSubject(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Team(team)})
}

// DeleteTeam DELETE /teams/:id.
func (h *DirectoryHandler) DeleteTeam(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cascades.DeleteTeam(c.UserContext(), principal.ScopeSubject(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// CreateEmployee POST /employees.
func (h *DirectoryHandler) CreateEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	employee, err := h.directory.CreateEmployee(c.UserContext(), principal.ScopeSubject(), service.CreateEmployeeInput{
		OrganizationID: req.OrganizationID,
		TeamID:         req.TeamID,
		Name:           req.Name,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Employee(employee)})
}

// ListEmployees GET /employees.
func (h *DirectoryHandler) ListEmployees(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	employees, err := h.directory.ListEmployees(c.UserContext(), principal.ScopeSubject(), c.Query("team_id"))
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, dto.Employee(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEmployee GET /employees/:id.
func (h *DirectoryHandler) GetEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	employee, err := h.directory.GetEmployee(c.UserContext(), principal.ScopeSubject(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Employee(employee)})
}

// DeleteEmployee DELETE /employees/:id.
func (h *DirectoryHandler) DeleteEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.cascades.DeleteEmployee(c.UserContext(), principal.ScopeSubject(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
