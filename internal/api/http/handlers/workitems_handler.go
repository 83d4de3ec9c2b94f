package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-planner/internal/api/dto"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/scope"
	"github.com/spec-kit/workforce-planner/internal/service"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// WorkItemsHandler manages leave request, task and incident endpoints.
type WorkItemsHandler struct {
	service *service.WorkItemService
}

// NewWorkItemsHandler constructs handler.
func NewWorkItemsHandler(workItemService *service.WorkItemService) *WorkItemsHandler {
	return &WorkItemsHandler{service: workItemService}
}

func listFilter(c *fiber.Ctx) scope.Filter {
	return scope.Filter{
		OrganizationID: c.Query("organization_id"),
		TeamID:         c.Query("team_id"),
		EmployeeID:     c.Query("employee_id"),
	}
}

// CreateLeave POST /leaves.
func (h *WorkItemsHandler) CreateLeave(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateLeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	leave, err := h.service.CreateLeave(c.UserContext(), principal.ScopeSubject(), service.CreateLeaveInput{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Leave(leave)})
}

// ReviewLeave POST /leaves/:id/review.
func (h *WorkItemsHandler) ReviewLeave(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewLeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	leave, err := h.service.ReviewLeave(c.UserContext(), principal.ScopeSubject(), c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Leave(leave)})
}

// ListLeaves GET /leaves.
func (h *WorkItemsHandler) ListLeaves(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	leaves, err := h.service.ListLeaves(c.UserContext(), principal.ScopeSubject(), listFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		items = append(items, dto.Leave(&leaves[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTask POST /tasks.
func (h *WorkItemsHandler) CreateTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.service.CreateTask(c.UserContext(), principal.ScopeSubject(), service.CreateTaskInput{
		EmployeeID:  req.EmployeeID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Task(task)})
}

// UpdateTaskStatus POST /tasks/:id/status.
func (h *WorkItemsHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.service.UpdateTaskStatus(c.UserContext(), principal.ScopeSubject(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Task(task)})
}

// ListTasks GET /tasks.
func (h *WorkItemsHandler) ListTasks(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tasks, err := h.service.ListTasks(c.UserContext(), principal.ScopeSubject(), listFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.Task(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateIncident POST /incidents.
func (h *WorkItemsHandler) CreateIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	incident, err := h.service.CreateIncident(c.UserContext(), principal.ScopeSubject(), service.CreateIncidentInput{
		EmployeeID:  req.EmployeeID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Incident(incident)})
}

// ListIncidents GET /incidents.
func (h *WorkItemsHandler) ListIncidents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	incidents, err := h.service.ListIncidents(c.UserContext(), principal.ScopeSubject(), listFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		items = append(items, dto.Incident(&incidents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
