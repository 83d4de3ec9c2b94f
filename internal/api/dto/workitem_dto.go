package dto

import (
	"time"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// CreateLeaveRequest payload.
type CreateLeaveRequest struct {
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Reason     string    `json:"reason,omitempty"`
}

// ReviewLeaveRequest payload.
type ReviewLeaveRequest struct {
	Approve bool `json:"approve"`
}

// LeaveResponse describes a leave request.
type LeaveResponse struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employee_id"`
	TeamID     *string            `json:"team_id,omitempty"`
	Type       domain.LeaveType   `json:"type"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    time.Time          `json:"end_date"`
	Status     domain.LeaveStatus `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Leave converts a domain leave request to the wire shape.
func Leave(leave *domain.LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:         leave.ID,
		EmployeeID: leave.EmployeeID,
		TeamID:     leave.TeamID,
		Type:       leave.Type,
		StartDate:  leave.StartDate,
		EndDate:    leave.EndDate,
		Status:     leave.Status,
		Reason:     leave.Reason,
		CreatedAt:  leave.CreatedAt,
	}
}

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	EmployeeID  string     `json:"employee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskStatusRequest payload.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse describes a task.
type TaskResponse struct {
	ID          string            `json:"id"`
	EmployeeID  string            `json:"employee_id"`
	TeamID      *string           `json:"team_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Task converts a domain task to the wire shape.
func Task(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		EmployeeID:  task.EmployeeID,
		TeamID:      task.TeamID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
	}
}

// CreateIncidentRequest payload.
type CreateIncidentRequest struct {
	EmployeeID  string    `json:"employee_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity"`
	OccurredAt  time.Time `json:"occurred_at,omitempty"`
}

// IncidentResponse describes an incident report.
type IncidentResponse struct {
	ID          string                  `json:"id"`
	EmployeeID  string                  `json:"employee_id"`
	TeamID      *string                 `json:"team_id,omitempty"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Severity    domain.IncidentSeverity `json:"severity"`
	Status      domain.IncidentStatus   `json:"status"`
	OccurredAt  time.Time               `json:"occurred_at"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Incident converts a domain incident to the wire shape.
func Incident(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          incident.ID,
		EmployeeID:  incident.EmployeeID,
		TeamID:      incident.TeamID,
		Title:       incident.Title,
		Description: incident.Description,
		Severity:    incident.Severity,
		Status:      incident.Status,
		OccurredAt:  incident.OccurredAt,
		CreatedAt:   incident.CreatedAt,
	}
}
