package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/events"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// WorkItemService manages the per-employee records that hang off the
// directory: leave requests, tasks and incident reports.
type WorkItemService struct {
	leaves     repository.LeaveRepository
	tasks      repository.TaskRepository
	incidents  repository.IncidentRepository
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// WorkItemDependencies bundles collaborators for the work item service.
type WorkItemDependencies struct {
	LeaveRepo    repository.LeaveRepository
	TaskRepo     repository.TaskRepository
	IncidentRepo repository.IncidentRepository
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewWorkItemService constructs the service.
func NewWorkItemService(deps WorkItemDependencies) *WorkItemService {
	return &WorkItemService{
		leaves:     deps.LeaveRepo,
		tasks:      deps.TaskRepo,
		incidents:  deps.IncidentRepo,
		employees:  deps.EmployeeRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// resolveTargetEmployee loads the employee a work item is written against and
// checks the caller may act on them. Employees act only on themselves.
func (s *WorkItemService) resolveTargetEmployee(ctx context.Context, sub scope.Subject, employeeID string) (*domain.Employee, error) {
	if sub.Role == domain.RoleEmployee && employeeID != sub.EmployeeID {
		return nil, apperrors.NewForbiddenScope("cannot act for another employee", map[string]any{
			"employee_id": employeeID,
		})
	}
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return nil, err
	}
	if resolved.Kind != scope.SelfScoped {
		teamID := ""
		if employee.TeamID != nil {
			teamID = *employee.TeamID
		}
		if !resolved.AllowsTeam(employee.OrganizationID, teamID) {
			return nil, apperrors.NewForbiddenScope("employee outside caller scope", map[string]any{
				"employee_id": employeeID,
			})
		}
	}
	return employee, nil
}

// CreateLeaveInput carries leave request parameters.
type CreateLeaveInput struct {
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// CreateLeave files a pending absence request for an employee.
func (s *WorkItemService) CreateLeave(ctx context.Context, sub scope.Subject, input CreateLeaveInput) (*domain.LeaveRequest, error) {
	leaveType, err := parseLeaveType(input.Type)
	if err != nil {
		return nil, err
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewValidationError("leave period is invalid", nil)
	}
	employee, err := s.resolveTargetEmployee(ctx, sub, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	leave := &domain.LeaveRequest{
		OrganizationID: employee.OrganizationID,
		TeamID:         employee.TeamID,
		EmployeeID:     employee.ID,
		Type:           leaveType,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         domain.LeaveStatusPending,
		Reason:         strings.TrimSpace(input.Reason),
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, sub, events.Event{
		Type:           events.EventLeaveRequested,
		OrganizationID: employee.OrganizationID,
		Payload: events.LeaveRequestedPayload{
			LeaveID:    leave.ID,
			EmployeeID: employee.ID,
			Type:       leave.Type,
		},
	})
	return leave, nil
}

// ReviewLeave approves or rejects a pending request. Employees cannot review,
// not even their own.
func (s *WorkItemService) ReviewLeave(ctx context.Context, sub scope.Subject, leaveID string, approve bool) (*domain.LeaveRequest, error) {
	if sub.Role == domain.RoleEmployee {
		return nil, apperrors.NewForbiddenScope("leave review requires elevated role", nil)
	}
	leave, err := s.leaves.GetByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("leave request", map[string]any{"leave_id": leaveID})
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.resolveTargetEmployee(ctx, sub, leave.EmployeeID); err != nil {
		return nil, err
	}
	if leave.Status != domain.LeaveStatusPending {
		return nil, apperrors.NewConflict("leave request already reviewed", map[string]any{
			"leave_id": leaveID, "status": string(leave.Status),
		})
	}
	if approve {
		leave.Status = domain.LeaveStatusApproved
	} else {
		leave.Status = domain.LeaveStatusRejected
	}
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, apperrors.MapError(err)
	}
	return leave, nil
}

// ListLeaves returns leave requests visible to the caller.
func (s *WorkItemService) ListLeaves(ctx context.Context, sub scope.Subject, f scope.Filter) ([]domain.LeaveRequest, error) {
	resolved, err := scope.Resolve(sub, f)
	if err != nil {
		return nil, err
	}
	leaves, err := s.leaves.ListWithScope(ctx, resolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leaves, nil
}

// CreateTaskInput carries task parameters.
type CreateTaskInput struct {
	EmployeeID  string
	Title       string
	Description string
	DueDate     *time.Time
}

// CreateTask assigns a work item to an employee. Employees do not assign
// tasks.
func (s *WorkItemService) CreateTask(ctx context.Context, sub scope.Subject, input CreateTaskInput) (*domain.Task, error) {
	if sub.Role == domain.RoleEmployee {
		return nil, apperrors.NewForbiddenScope("task assignment requires elevated role", nil)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("task title is required", nil)
	}
	employee, err := s.resolveTargetEmployee(ctx, sub, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		OrganizationID: employee.OrganizationID,
		TeamID:         employee.TeamID,
		EmployeeID:     employee.ID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TaskStatusOpen,
		DueDate:        input.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// UpdateTaskStatus moves a task through its lifecycle. The assigned employee
// may update their own task.
func (s *WorkItemService) UpdateTaskStatus(ctx context.Context, sub scope.Subject, taskID, status string) (*domain.Task, error) {
	next, err := parseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.resolveTargetEmployee(ctx, sub, task.EmployeeID); err != nil {
		return nil, err
	}
	task.Status = next
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// ListTasks returns tasks visible to the caller.
func (s *WorkItemService) ListTasks(ctx context.Context, sub scope.Subject, f scope.Filter) ([]domain.Task, error) {
	resolved, err := scope.Resolve(sub, f)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListWithScope(ctx, resolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// CreateIncidentInput carries incident report parameters.
type CreateIncidentInput struct {
	EmployeeID  string
	Title       string
	Description string
	Severity    string
	OccurredAt  time.Time
}

// CreateIncident files a workplace incident report against an employee.
func (s *WorkItemService) CreateIncident(ctx context.Context, sub scope.Subject, input CreateIncidentInput) (*domain.Incident, error) {
	severity, err := parseIncidentSeverity(input.Severity)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("incident title is required", nil)
	}
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	employee, err := s.resolveTargetEmployee(ctx, sub, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		OrganizationID: employee.OrganizationID,
		TeamID:         employee.TeamID,
		EmployeeID:     employee.ID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Severity:       severity,
		Status:         domain.IncidentStatusReported,
		OccurredAt:     occurredAt,
	}
	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, sub, events.Event{
		Type:           events.EventIncidentReported,
		OrganizationID: employee.OrganizationID,
		Payload: events.IncidentReportedPayload{
			IncidentID: incident.ID,
			EmployeeID: employee.ID,
			Severity:   incident.Severity,
		},
	})
	return incident, nil
}

// ListIncidents returns incident reports visible to the caller.
func (s *WorkItemService) ListIncidents(ctx context.Context, sub scope.Subject, f scope.Filter) ([]domain.Incident, error) {
	resolved, err := scope.Resolve(sub, f)
	if err != nil {
		return nil, err
	}
	incidents, err := s.incidents.ListWithScope(ctx, resolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return incidents, nil
}

func parseLeaveType(raw string) (domain.LeaveType, error) {
	switch t := domain.LeaveType(strings.ToUpper(raw)); t {
	case domain.LeaveTypeAnnual, domain.LeaveTypeSick, domain.LeaveTypeUnpaid, domain.LeaveTypeOther:
		return t, nil
	default:
		return "", apperrors.NewValidationError("unknown leave type", map[string]any{"type": raw})
	}
}

func parseTaskStatus(raw string) (domain.TaskStatus, error) {
	switch s := domain.TaskStatus(strings.ToUpper(raw)); s {
	case domain.TaskStatusOpen, domain.TaskStatusInProgress, domain.TaskStatusDone:
		return s, nil
	default:
		return "", apperrors.NewValidationError("unknown task status", map[string]any{"status": raw})
	}
}

func parseIncidentSeverity(raw string) (domain.IncidentSeverity, error) {
	switch s := domain.IncidentSeverity(strings.ToUpper(raw)); s {
	case domain.IncidentSeverityLow, domain.IncidentSeverityMedium, domain.IncidentSeverityHigh, domain.IncidentSeverityCritical:
		return s, nil
	default:
		return "", apperrors.NewValidationError("unknown incident severity", map[string]any{"severity": raw})
	}
}

func (s *WorkItemService) publish(ctx context.Context, sub scope.Subject, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	event.Actor = events.Actor{Role: sub.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
