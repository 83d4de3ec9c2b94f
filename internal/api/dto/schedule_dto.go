package dto

import (
	"time"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// SubmitScheduleRequest is the weekly submission payload. Key casing follows
// the legacy client contract: weekday-keyed maps of strict HH:MM-HH:MM slots,
// optional per-day notes and ISO dates.
type SubmitScheduleRequest struct {
	EmployeeID string              `json:"employeeId"`
	WeekNumber int                 `json:"weekNumber"`
	Year       int                 `json:"year"`
	Schedule   map[string][]string `json:"scheduleData"`
	DailyNotes map[string]string   `json:"dailyNotes,omitempty"`
	DailyDates map[string]string   `json:"dailyDates,omitempty"`
}

// ShiftEntryResponse is one shift inside a weekday bucket.
type ShiftEntryResponse struct {
	EmployeeID string  `json:"employee_id"`
	Slot       string  `json:"slot"`
	Note       string  `json:"note,omitempty"`
	Date       *string `json:"date,omitempty"`
}

// EmployeeWeekResponse is the backward-compatible read row: one employee's
// slice of the shared team-week record.
type EmployeeWeekResponse struct {
	RecordID   string                          `json:"record_id"`
	TeamID     string                          `json:"team_id"`
	EmployeeID string                          `json:"employee_id"`
	WeekStart  string                          `json:"week_start"`
	WeekEnd    string                          `json:"week_end"`
	Days       map[string][]ShiftEntryResponse `json:"days"`
}

// ScheduleRecordResponse is the full shared record returned after a submit.
type ScheduleRecordResponse struct {
	ID        string                          `json:"id"`
	TeamID    string                          `json:"team_id"`
	WeekStart string                          `json:"week_start"`
	WeekEnd   string                          `json:"week_end"`
	Days      map[string][]ShiftEntryResponse `json:"days"`
	Version   int64                           `json:"version"`
	UpdatedAt time.Time                       `json:"updated_at"`
}

// ShiftEntries converts domain entries to the wire shape.
func ShiftEntries(entries []domain.ShiftEntry) []ShiftEntryResponse {
	out := make([]ShiftEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp := ShiftEntryResponse{
			EmployeeID: entry.EmployeeID,
			Slot:       entry.Slot(),
			Note:       entry.Note,
		}
		if entry.Date != nil {
			formatted := entry.Date.Format("2006-01-02")
			resp.Date = &formatted
		}
		out = append(out, resp)
	}
	return out
}
