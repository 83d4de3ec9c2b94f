package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/config"
	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/events"
	"github.com/spec-kit/workforce-planner/internal/persistence"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	"github.com/spec-kit/workforce-planner/pkg/isoweek"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// ScheduleService consolidates individual weekly submissions into the shared
// per-team per-week schedule record.
type ScheduleService struct {
	schedules  repository.ScheduleRepository
	employees  repository.EmployeeRepository
	teams      repository.TeamRepository
	locks      *persistence.KeyLock
	dispatcher events.Dispatcher
	logger     *zap.Logger
	retries    int
}

// ScheduleDependencies bundles collaborators for the schedule service.
type ScheduleDependencies struct {
	ScheduleRepo repository.ScheduleRepository
	EmployeeRepo repository.EmployeeRepository
	TeamRepo     repository.TeamRepository
	Locks        *persistence.KeyLock
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(cfg config.ScheduleConfig, deps ScheduleDependencies) *ScheduleService {
	return &ScheduleService{
		schedules:  deps.ScheduleRepo,
		employees:  deps.EmployeeRepo,
		teams:      deps.TeamRepo,
		locks:      deps.Locks,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		retries:    cfg.Retries(),
	}
}

// ScheduleSubmission is one employee's weekly shift payload. Keys of Days,
// Notes and Dates are weekday names (monday..sunday); slots use strict
// HH:MM-HH:MM form; Dates values are ISO dates.
type ScheduleSubmission struct {
	EmployeeID string
	Year       int
	WeekNumber int
	Days       map[string][]string
	Notes      map[string]string
	Dates      map[string]string
}

// Submit merges one employee's weekly shifts into the shared team record,
// creating it when absent. Resubmission replaces that employee's previous
// entries wholesale; other employees' entries are never touched. The merge is
// serialized per (organization, team, week start) and retried a bounded
// number of times on version conflicts.
func (s *ScheduleService) Submit(ctx context.Context, sub scope.Subject, input ScheduleSubmission) (*domain.ScheduleRecord, error) {
	if err := isoweek.Validate(input.Year, input.WeekNumber); err != nil {
		return nil, apperrors.NewValidationError("invalid week number", map[string]any{
			"year": input.Year, "week_number": input.WeekNumber,
		})
	}
	if sub.Role == domain.RoleEmployee && input.EmployeeID != sub.EmployeeID {
		return nil, apperrors.NewForbiddenScope("cannot submit for another employee", map[string]any{
			"employee_id": input.EmployeeID,
		})
	}

	// All validation happens before any record is read or written, so a bad
	// payload can never partially mutate the stored week.
	days, err := parseSubmissionDays(input)
	if err != nil {
		return nil, err
	}

	employee, err := s.employees.GetByID(ctx, input.EmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": input.EmployeeID})
		}
		return nil, apperrors.MapError(err)
	}
	if employee.TeamID == nil {
		return nil, apperrors.NewValidationError("employee has no team", map[string]any{
			"employee_id": employee.ID,
		})
	}

	team, err := s.teams.GetByID(ctx, *employee.TeamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": *employee.TeamID})
		}
		return nil, apperrors.MapError(err)
	}

	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return nil, err
	}
	if !resolved.AllowsTeam(team.OrganizationID, team.ID) {
		return nil, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{
			"team_id": team.ID,
		})
	}

	weekStart, weekEnd := isoweek.WeekRange(input.Year, input.WeekNumber)

	key := scheduleLockKey(team.OrganizationID, team.ID, weekStart)
	release, err := s.locks.Acquire(ctx, key)
	if err != nil {
		return nil, apperrors.NewConflict("could not serialize schedule submission", nil)
	}
	defer release()

	if s.locks.IsTombstoned(ctx, teamLockKey(team.ID)) {
		return nil, apperrors.NewNotFound("team", map[string]any{"team_id": team.ID})
	}

	record, created, err := s.mergeWithRetry(ctx, team.OrganizationID, team.ID, weekStart, weekEnd, employee.ID, days)
	if err != nil {
		return nil, err
	}

	// A team cascade may start between the first tombstone check and the
	// write; its schedule sweep would then miss the record written here.
	// Re-checking while the week lock is still held closes that window:
	// a record written for a tombstoned team is retracted, never kept.
	if s.locks.IsTombstoned(ctx, teamLockKey(team.ID)) {
		if delErr := s.schedules.Delete(ctx, record.ID); delErr != nil {
			s.logger.Error("failed to retract schedule record for deleted team",
				zap.String("record_id", record.ID),
				zap.String("team_id", team.ID),
				zap.Error(delErr))
		}
		return nil, apperrors.NewNotFound("team", map[string]any{"team_id": team.ID})
	}

	s.publish(ctx, sub, events.Event{
		Type:           events.EventScheduleSubmitted,
		OrganizationID: team.OrganizationID,
		Payload: events.ScheduleSubmittedPayload{
			RecordID:   record.ID,
			TeamID:     team.ID,
			EmployeeID: employee.ID,
			WeekStart:  weekStart,
			WeekEnd:    weekEnd,
			Created:    created,
		},
	})
	return record, nil
}

func (s *ScheduleService) mergeWithRetry(ctx context.Context, orgID, teamID string, weekStart, weekEnd time.Time, employeeID string, days map[domain.Weekday][]domain.ShiftEntry) (*domain.ScheduleRecord, bool, error) {
	for attempt := 0; attempt < s.retries; attempt++ {
		record, err := s.schedules.GetByWeek(ctx, orgID, teamID, weekStart)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			record = &domain.ScheduleRecord{
				OrganizationID: orgID,
				TeamID:         teamID,
				WeekStart:      weekStart,
				WeekEnd:        weekEnd,
				Days:           make(map[domain.Weekday][]domain.ShiftEntry),
			}
			record.ReplaceEmployeeEntries(employeeID, days)
			err = s.schedules.Insert(ctx, record)
			if errors.Is(err, repository.ErrDuplicateWeek) {
				// Another employee created the week first; merge into it.
				continue
			}
			if err != nil {
				return nil, false, apperrors.MapError(err)
			}
			return record, true, nil
		case err != nil:
			return nil, false, apperrors.MapError(err)
		}

		record.ReplaceEmployeeEntries(employeeID, days)
		err = s.schedules.UpdateDays(ctx, record)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, false, apperrors.MapError(err)
		}
		return record, false, nil
	}
	return nil, false, apperrors.NewConflict("schedule merge retries exhausted", map[string]any{
		"team_id": teamID, "week_start": weekStart.Format("2006-01-02"),
	})
}

// ScheduleQuery selects the week and optional narrowing for list reads.
type ScheduleQuery struct {
	Year       int
	WeekNumber int
	TeamID     string
	EmployeeID string
}

// List returns the backward-compatible read shape: one row per
// (employee, week), expanded from the shared team records visible to the
// caller.
func (s *ScheduleService) List(ctx context.Context, sub scope.Subject, q ScheduleQuery) ([]domain.EmployeeWeek, error) {
	if err := isoweek.Validate(q.Year, q.WeekNumber); err != nil {
		return nil, apperrors.NewValidationError("invalid week number", map[string]any{
			"year": q.Year, "week_number": q.WeekNumber,
		})
	}
	resolved, err := scope.Resolve(sub, scope.Filter{TeamID: q.TeamID, EmployeeID: q.EmployeeID})
	if err != nil {
		return nil, err
	}

	weekStart, _ := isoweek.WeekRange(q.Year, q.WeekNumber)
	records, err := s.schedules.ListWithScope(ctx, resolved, &weekStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rows := make([]domain.EmployeeWeek, 0)
	for i := range records {
		for _, row := range domain.ExpandEmployeeWeeks(&records[i]) {
			// Shared records carry every team member; self-scoped callers and
			// explicit employee narrowing see only the matching rows.
			if resolved.EmployeeID != "" && row.EmployeeID != resolved.EmployeeID {
				continue
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Delete removes one shared week record within the caller's scope.
func (s *ScheduleService) Delete(ctx context.Context, sub scope.Subject, recordID string) error {
	record, err := s.schedules.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("schedule record", map[string]any{"record_id": recordID})
		}
		return apperrors.MapError(err)
	}

	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return err
	}
	if !resolved.AllowsTeam(record.OrganizationID, record.TeamID) {
		return apperrors.NewForbiddenScope("schedule outside caller scope", map[string]any{
			"record_id": recordID,
		})
	}

	if err := s.schedules.Delete(ctx, record.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, sub, events.Event{
		Type:           events.EventScheduleDeleted,
		OrganizationID: record.OrganizationID,
		Payload: events.ScheduleDeletedPayload{
			RecordID: record.ID,
			TeamID:   record.TeamID,
		},
	})
	return nil
}

func parseSubmissionDays(input ScheduleSubmission) (map[domain.Weekday][]domain.ShiftEntry, error) {
	days := make(map[domain.Weekday][]domain.ShiftEntry, len(input.Days))
	for dayName, slots := range input.Days {
		if !domain.IsWeekday(dayName) {
			return nil, apperrors.NewValidationError("unknown weekday", map[string]any{"day": dayName})
		}
		day := domain.Weekday(dayName)

		var date *time.Time
		if raw, ok := input.Dates[dayName]; ok && raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, apperrors.NewValidationError("invalid date", map[string]any{
					"day": dayName, "date": raw,
				})
			}
			date = &parsed
		}

		for slotIdx, slot := range slots {
			start, end, err := domain.ParseTimeSlot(slot)
			if err != nil {
				return nil, apperrors.NewValidationError("invalid time slot", map[string]any{
					"day": dayName, "slot": slotIdx, "value": slot,
				})
			}
			days[day] = append(days[day], domain.ShiftEntry{
				EmployeeID: input.EmployeeID,
				Start:      start,
				End:        end,
				Note:       input.Notes[dayName],
				Date:       date,
			})
		}
	}
	return days, nil
}

func scheduleLockKey(orgID, teamID string, weekStart time.Time) string {
	return fmt.Sprintf("schedule:%s:%s:%s", orgID, teamID, weekStart.Format("2006-01-02"))
}

func teamLockKey(teamID string) string {
	return "team:" + teamID
}

func (s *ScheduleService) publish(ctx context.Context, sub scope.Subject, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{Role: sub.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
