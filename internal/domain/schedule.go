package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Weekday names the seven per-day buckets of a schedule record.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists weekday keys in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// IsWeekday reports whether the string names one of the seven buckets.
func IsWeekday(name string) bool {
	for _, d := range Weekdays {
		if string(d) == name {
			return true
		}
	}
	return false
}

// ShiftEntry is one employee's shift within a weekday bucket.
type ShiftEntry struct {
	EmployeeID string     `json:"employee_id"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Note       string     `json:"note,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

// Slot renders the entry back into HH:MM-HH:MM form.
func (e ShiftEntry) Slot() string {
	return e.Start + "-" + e.End
}

var timeSlotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

// ParseTimeSlot validates a strict 24-hour HH:MM-HH:MM slot and splits it.
// Start must be strictly before end; the fixed-width zero-padded format makes
// a lexical comparison sufficient.
func ParseTimeSlot(slot string) (start, end string, err error) {
	if !timeSlotPattern.MatchString(slot) {
		return "", "", fmt.Errorf("time slot %q must match HH:MM-HH:MM", slot)
	}
	parts := strings.SplitN(slot, "-", 2)
	if parts[0] >= parts[1] {
		return "", "", fmt.Errorf("time slot %q must start before it ends", slot)
	}
	return parts[0], parts[1], nil
}

// ScheduleRecord is the shared per-team per-week storage unit. One record
// holds every scheduled employee's shifts for that week; (organization, team,
// week start, week end) is the natural key. Version backs optimistic
// concurrency on the read-modify-write merge.
type ScheduleRecord struct {
	ID             string
	OrganizationID string
	TeamID         string
	WeekStart      time.Time
	WeekEnd        time.Time
	Days           map[Weekday][]ShiftEntry
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReplaceEmployeeEntries removes every entry belonging to employeeID and
// appends the submitted entries per weekday. Other employees' entries are
// untouched, so the merge commutes across employees and resubmission
// replaces instead of accumulating.
func (r *ScheduleRecord) ReplaceEmployeeEntries(employeeID string, days map[Weekday][]ShiftEntry) {
	if r.Days == nil {
		r.Days = make(map[Weekday][]ShiftEntry, len(Weekdays))
	}
	for _, day := range Weekdays {
		kept := withoutEmployee(r.Days[day], employeeID)
		kept = append(kept, days[day]...)
		if len(kept) == 0 {
			delete(r.Days, day)
			continue
		}
		r.Days[day] = kept
	}
}

// RemoveEmployeeEntries strips one employee's shifts from every weekday and
// reports whether anything changed. An empty record afterwards is the
// caller's cue to delete it outright.
func (r *ScheduleRecord) RemoveEmployeeEntries(employeeID string) bool {
	changed := false
	for day, entries := range r.Days {
		kept := withoutEmployee(entries, employeeID)
		if len(kept) == len(entries) {
			continue
		}
		changed = true
		if len(kept) == 0 {
			delete(r.Days, day)
			continue
		}
		r.Days[day] = kept
	}
	return changed
}

// Empty reports whether no shifts remain in any weekday bucket.
func (r *ScheduleRecord) Empty() bool {
	for _, entries := range r.Days {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// EmployeeIDs returns the distinct employees scheduled in this record,
// ordered by first appearance walking the week.
func (r *ScheduleRecord) EmployeeIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, day := range Weekdays {
		for _, entry := range r.Days[day] {
			if _, ok := seen[entry.EmployeeID]; ok {
				continue
			}
			seen[entry.EmployeeID] = struct{}{}
			ids = append(ids, entry.EmployeeID)
		}
	}
	return ids
}

func withoutEmployee(entries []ShiftEntry, employeeID string) []ShiftEntry {
	var kept []ShiftEntry
	for _, entry := range entries {
		if entry.EmployeeID == employeeID {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

// EmployeeWeek is the backward-compatible read shape: one row per
// (employee, week), projected out of the shared team record.
type EmployeeWeek struct {
	RecordID       string
	OrganizationID string
	TeamID         string
	EmployeeID     string
	WeekStart      time.Time
	WeekEnd        time.Time
	Days           map[Weekday][]ShiftEntry
}

// ExpandEmployeeWeeks projects a shared team-week record into per-employee
// rows. Pure; the storage layout can evolve without changing this contract.
func ExpandEmployeeWeeks(record *ScheduleRecord) []EmployeeWeek {
	rows := make([]EmployeeWeek, 0)
	for _, employeeID := range record.EmployeeIDs() {
		row := EmployeeWeek{
			RecordID:       record.ID,
			OrganizationID: record.OrganizationID,
			TeamID:         record.TeamID,
			EmployeeID:     employeeID,
			WeekStart:      record.WeekStart,
			WeekEnd:        record.WeekEnd,
			Days:           make(map[Weekday][]ShiftEntry),
		}
		for _, day := range Weekdays {
			for _, entry := range record.Days[day] {
				if entry.EmployeeID != employeeID {
					continue
				}
				row.Days[day] = append(row.Days[day], entry)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
