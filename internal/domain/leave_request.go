package domain

import "time"

// LeaveType enumerates supported absence categories.
type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "ANNUAL"
	LeaveTypeSick   LeaveType = "SICK"
	LeaveTypeUnpaid LeaveType = "UNPAID"
	LeaveTypeOther  LeaveType = "OTHER"
)

// LeaveStatus enumerates approval states.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is an employee's absence request. It follows the same
// cascade-deletion rules as schedule records.
type LeaveRequest struct {
	ID             string
	OrganizationID string
	TeamID         *string
	EmployeeID     string
	Type           LeaveType
	StartDate      time.Time
	EndDate        time.Time
	Status         LeaveStatus
	Reason         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
