package domain

import "time"

// IncidentSeverity grades workplace incidents.
type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "LOW"
	IncidentSeverityMedium   IncidentSeverity = "MEDIUM"
	IncidentSeverityHigh     IncidentSeverity = "HIGH"
	IncidentSeverityCritical IncidentSeverity = "CRITICAL"
)

// IncidentStatus enumerates report states.
type IncidentStatus string

const (
	IncidentStatusReported IncidentStatus = "REPORTED"
	IncidentStatusReviewed IncidentStatus = "REVIEWED"
	IncidentStatusClosed   IncidentStatus = "CLOSED"
)

// Incident is a workplace incident report tied to an employee.
type Incident struct {
	ID             string
	OrganizationID string
	TeamID         *string
	EmployeeID     string
	Title          string
	Description    string
	Severity       IncidentSeverity
	Status         IncidentStatus
	OccurredAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
