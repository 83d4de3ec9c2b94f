package events

import (
	"time"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventScheduleSubmitted   EventType = "schedule_submitted"
	EventScheduleDeleted     EventType = "schedule_deleted"
	EventLeaveRequested      EventType = "leave_requested"
	EventIncidentReported    EventType = "incident_reported"
	EventEmployeeDeleted     EventType = "employee_deleted"
	EventTeamDeleted         EventType = "team_deleted"
	EventOrganizationDeleted EventType = "organization_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// ScheduleSubmittedPayload payload.
type ScheduleSubmittedPayload struct {
	RecordID   string    `json:"record_id"`
	TeamID     string    `json:"team_id"`
	EmployeeID string    `json:"employee_id"`
	WeekStart  time.Time `json:"week_start"`
	WeekEnd    time.Time `json:"week_end"`
	Created    bool      `json:"created"`
}

// ScheduleDeletedPayload payload.
type ScheduleDeletedPayload struct {
	RecordID string `json:"record_id"`
	TeamID   string `json:"team_id"`
}

// LeaveRequestedPayload payload.
type LeaveRequestedPayload struct {
	LeaveID    string           `json:"leave_id"`
	EmployeeID string           `json:"employee_id"`
	Type       domain.LeaveType `json:"type"`
}

// IncidentReportedPayload payload.
type IncidentReportedPayload struct {
	IncidentID string                  `json:"incident_id"`
	EmployeeID string                  `json:"employee_id"`
	Severity   domain.IncidentSeverity `json:"severity"`
}

// CascadeCompletedPayload reports a finished cascade deletion.
type CascadeCompletedPayload struct {
	EntityID         string `json:"entity_id"`
	SchedulesRemoved int    `json:"schedules_removed,omitempty"`
	EmployeesTouched int    `json:"employees_touched,omitempty"`
	TeamsRemoved     int    `json:"teams_removed,omitempty"`
}
