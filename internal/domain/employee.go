package domain

import "time"

// EmployeeStatus represents lifecycle states for an employee.
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "ACTIVE"
	EmployeeStatusInactive EmployeeStatus = "INACTIVE"
)

// Employee is a scheduled worker. An employee belongs to exactly one
// organization, optionally to one team, and may be linked to an account
// for self-service access.
type Employee struct {
	ID             string
	OrganizationID string
	TeamID         *string
	AccountID      *string
	Name           string
	Status         EmployeeStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
