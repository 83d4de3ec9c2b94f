package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-planner/internal/api/dto"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/service"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// SchedulesHandler manages weekly schedule endpoints.
type SchedulesHandler struct {
	service *service.ScheduleService
}

// NewSchedulesHandler constructs handler.
func NewSchedulesHandler(scheduleService *service.ScheduleService) *SchedulesHandler {
	return &SchedulesHandler{service: scheduleService}
}

// Submit POST /schedules.
func (h *SchedulesHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID == "" {
		return apperrors.NewValidationError("employeeId required", nil)
	}
	if len(req.Schedule) == 0 {
		return apperrors.NewValidationError("scheduleData required", nil)
	}

	record, err := h.service.Submit(c.UserContext(), principal.ScopeSubject(), service.ScheduleSubmission{
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		WeekNumber: req.WeekNumber,
		Days:       req.Schedule,
		Notes:      req.DailyNotes,
		Dates:      req.DailyDates,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": scheduleRecordResponse(record)})
}

// List GET /schedules.
func (h *SchedulesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return apperrors.NewValidationError("year required", nil)
	}
	week, err := strconv.Atoi(c.Query("weekNumber"))
	if err != nil {
		return apperrors.NewValidationError("weekNumber required", nil)
	}

	rows, err := h.service.List(c.UserContext(), principal.ScopeSubject(), service.ScheduleQuery{
		Year:       year,
		WeekNumber: week,
		TeamID:     c.Query("teamId"),
		EmployeeID: c.Query("employeeId"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeWeekResponse, 0, len(rows))
	for i := range rows {
		items = append(items, employeeWeekResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete DELETE /schedules/:id.
func (h *SchedulesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), principal.ScopeSubject(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func scheduleRecordResponse(record *domain.ScheduleRecord) dto.ScheduleRecordResponse {
	days := make(map[string][]dto.ShiftEntryResponse, len(record.Days))
	for day, entries := range record.Days {
		days[string(day)] = dto.ShiftEntries(entries)
	}
	return dto.ScheduleRecordResponse{
		ID:        record.ID,
		TeamID:    record.TeamID,
		WeekStart: record.WeekStart.Format("2006-01-02"),
		WeekEnd:   record.WeekEnd.Format("2006-01-02"),
		Days:      days,
		Version:   record.Version,
		UpdatedAt: record.UpdatedAt,
	}
}

func employeeWeekResponse(row *domain.EmployeeWeek) dto.EmployeeWeekResponse {
	days := make(map[string][]dto.ShiftEntryResponse, len(row.Days))
	for day, entries := range row.Days {
		days[string(day)] = dto.ShiftEntries(entries)
	}
	return dto.EmployeeWeekResponse{
		RecordID:   row.RecordID,
		TeamID:     row.TeamID,
		EmployeeID: row.EmployeeID,
		WeekStart:  row.WeekStart.Format("2006-01-02"),
		WeekEnd:    row.WeekEnd.Format("2006-01-02"),
		Days:       days,
	}
}
