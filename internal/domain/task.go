package domain

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Task is a work item assigned to an employee.
type Task struct {
	ID             string
	OrganizationID string
	TeamID         *string
	EmployeeID     string
	Title          string
	Description    string
	Status         TaskStatus
	DueDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
