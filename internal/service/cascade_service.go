package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/events"
	"github.com/spec-kit/workforce-planner/internal/persistence"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

const tombstoneTTL = 30 * time.Second

// CascadeService removes entities together with everything that references
// them. The store has no foreign-key ON DELETE rules for these paths, so
// each cascade runs leaf first and every step is idempotent: re-running a
// partially failed cascade converges on the same end state.
type CascadeService struct {
	organizations repository.OrganizationRepository
	subscriptions repository.SubscriptionRepository
	teams         repository.TeamRepository
	employees     repository.EmployeeRepository
	accounts      repository.AccountRepository
	schedules     repository.ScheduleRepository
	leaves        repository.LeaveRepository
	tasks         repository.TaskRepository
	incidents     repository.IncidentRepository
	locks         *persistence.KeyLock
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// CascadeDependencies bundles collaborators for the cascade service.
type CascadeDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	SubscriptionRepo repository.SubscriptionRepository
	TeamRepo         repository.TeamRepository
	EmployeeRepo     repository.EmployeeRepository
	AccountRepo      repository.AccountRepository
	ScheduleRepo     repository.ScheduleRepository
	LeaveRepo        repository.LeaveRepository
	TaskRepo         repository.TaskRepository
	IncidentRepo     repository.IncidentRepository
	Locks            *persistence.KeyLock
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewCascadeService constructs the service.
func NewCascadeService(deps CascadeDependencies) *CascadeService {
	return &CascadeService{
		organizations: deps.OrganizationRepo,
		subscriptions: deps.SubscriptionRepo,
		teams:         deps.TeamRepo,
		employees:     deps.EmployeeRepo,
		accounts:      deps.AccountRepo,
		schedules:     deps.ScheduleRepo,
		leaves:        deps.LeaveRepo,
		tasks:         deps.TaskRepo,
		incidents:     deps.IncidentRepo,
		locks:         deps.Locks,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// DeleteEmployee removes an employee, their work items, their shift entries in
// shared schedule records, and the link from any login account. A missing
// employee is a no-op so that retried cascades stay convergent.
func (s *CascadeService) DeleteEmployee(ctx context.Context, sub scope.Subject, employeeID string) error {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperrors.MapError(err)
	}

	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return err
	}
	teamID := ""
	if employee.TeamID != nil {
		teamID = *employee.TeamID
	}
	if !resolved.AllowsTeam(employee.OrganizationID, teamID) {
		return apperrors.NewForbiddenScope("employee outside caller scope", map[string]any{
			"employee_id": employeeID,
		})
	}

	if err := s.removeEmployee(ctx, employee); err != nil {
		return err
	}
	s.publish(ctx, sub, events.Event{
		Type:           events.EventEmployeeDeleted,
		OrganizationID: employee.OrganizationID,
		Payload:        events.CascadeCompletedPayload{EntityID: employee.ID, EmployeesTouched: 1},
	})
	return nil
}

func (s *CascadeService) removeEmployee(ctx context.Context, employee *domain.Employee) error {
	step := 0

	fail := func(err error) error {
		s.logger.Error("employee cascade step failed",
			zap.String("employee_id", employee.ID), zap.Int("step", step), zap.Error(err))
		return apperrors.NewIntegrityError("employee", step, err)
	}

	if err := s.scrubScheduleEntries(ctx, employee); err != nil {
		return fail(err)
	}
	step++
	if err := s.leaves.DeleteByEmployee(ctx, employee.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.tasks.DeleteByEmployee(ctx, employee.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.incidents.DeleteByEmployee(ctx, employee.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.accounts.DetachEmployee(ctx, employee.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.employees.Delete(ctx, employee.ID); err != nil {
		return fail(err)
	}
	return nil
}

// scrubScheduleEntries strips one employee's shifts from every shared record
// of their team, leaving other employees' entries intact. Versioned updates
// absorb concurrent submissions.
func (s *CascadeService) scrubScheduleEntries(ctx context.Context, employee *domain.Employee) error {
	if employee.TeamID == nil {
		return nil
	}
	records, err := s.schedules.ListWithScope(ctx, scope.Scope{
		Kind:           scope.TeamScoped,
		OrganizationID: employee.OrganizationID,
		TeamIDs:        []string{*employee.TeamID},
	}, nil)
	if err != nil {
		return err
	}
	for i := range records {
		if err := s.scrubOneRecord(ctx, &records[i], employee.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CascadeService) scrubOneRecord(ctx context.Context, rec *domain.ScheduleRecord, employeeID string) error {
	for attempt := 0; attempt < 3; attempt++ {
		if !rec.RemoveEmployeeEntries(employeeID) {
			return nil
		}
		if rec.Empty() {
			return s.schedules.Delete(ctx, rec.ID)
		}
		err := s.schedules.UpdateDays(ctx, rec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		fresh, err := s.schedules.GetByID(ctx, rec.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		*rec = *fresh
	}
	return repository.ErrVersionConflict
}

// DeleteTeam removes a team, its schedule records, and the work items of its
// members, then detaches those members and any managing accounts. Members are
// snapshotted before detachment so a re-run after a partial failure still
// finds their work items through the earlier idempotent steps.
func (s *CascadeService) DeleteTeam(ctx context.Context, sub scope.Subject, teamID string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperrors.MapError(err)
	}

	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return err
	}
	if !resolved.AllowsTeam(team.OrganizationID, team.ID) {
		return apperrors.NewForbiddenScope("team outside caller scope", map[string]any{
			"team_id": teamID,
		})
	}

	counts, err := s.removeTeam(ctx, team)
	if err != nil {
		return err
	}
	s.publish(ctx, sub, events.Event{
		Type:           events.EventTeamDeleted,
		OrganizationID: team.OrganizationID,
		Payload: events.CascadeCompletedPayload{
			EntityID:         team.ID,
			TeamsRemoved:     1,
			EmployeesTouched: counts,
		},
	})
	return nil
}

func (s *CascadeService) removeTeam(ctx context.Context, team *domain.Team) (int, error) {
	// New submissions for this team fail while the marker lives; the cascade
	// itself finishes well inside the TTL.
	s.locks.Tombstone(ctx, teamLockKey(team.ID), tombstoneTTL)

	members, err := s.employees.ListByTeam(ctx, team.ID)
	if err != nil {
		return 0, apperrors.NewIntegrityError("team", 0, err)
	}
	memberIDs := make([]string, len(members))
	for i := range members {
		memberIDs[i] = members[i].ID
	}

	step := 1
	fail := func(err error) (int, error) {
		s.logger.Error("team cascade step failed",
			zap.String("team_id", team.ID), zap.Int("step", step), zap.Error(err))
		return 0, apperrors.NewIntegrityError("team", step, err)
	}

	if err := s.schedules.DeleteByTeam(ctx, team.ID); err != nil {
		return fail(err)
	}
	step++
	if len(memberIDs) > 0 {
		if err := s.leaves.DeleteByEmployees(ctx, memberIDs); err != nil {
			return fail(err)
		}
		step++
		if err := s.tasks.DeleteByEmployees(ctx, memberIDs); err != nil {
			return fail(err)
		}
		step++
		if err := s.incidents.DeleteByEmployees(ctx, memberIDs); err != nil {
			return fail(err)
		}
		step++
	} else {
		step += 3
	}
	if err := s.employees.DetachTeam(ctx, team.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.accounts.RemoveTeamFromAll(ctx, team.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.teams.Delete(ctx, team.ID); err != nil {
		return fail(err)
	}
	return len(memberIDs), nil
}

// DeleteOrganization removes an organization and everything under it. Teams
// cascade individually first so their tombstones block in-flight submissions,
// then organization-wide sweeps catch team-less leftovers.
func (s *CascadeService) DeleteOrganization(ctx context.Context, sub scope.Subject, organizationID string) error {
	if sub.Role != domain.RoleAdmin {
		return apperrors.NewForbiddenScope("organization deletion requires admin", nil)
	}

	org, err := s.organizations.GetByID(ctx, organizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperrors.MapError(err)
	}

	teams, err := s.teams.ListByOrganization(ctx, org.ID)
	if err != nil {
		return apperrors.NewIntegrityError("organization", 0, err)
	}
	touched := 0
	for i := range teams {
		n, err := s.removeTeam(ctx, &teams[i])
		if err != nil {
			return err
		}
		touched += n
	}

	step := 1
	fail := func(err error) error {
		s.logger.Error("organization cascade step failed",
			zap.String("organization_id", org.ID), zap.Int("step", step), zap.Error(err))
		return apperrors.NewIntegrityError("organization", step, err)
	}

	if err := s.schedules.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.leaves.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.tasks.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.incidents.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.employees.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.accounts.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.subscriptions.DeleteByOrganization(ctx, org.ID); err != nil {
		return fail(err)
	}
	step++
	if err := s.organizations.Delete(ctx, org.ID); err != nil {
		return fail(err)
	}

	s.publish(ctx, sub, events.Event{
		Type:           events.EventOrganizationDeleted,
		OrganizationID: org.ID,
		Payload: events.CascadeCompletedPayload{
			EntityID:         org.ID,
			TeamsRemoved:     len(teams),
			EmployeesTouched: touched,
		},
	})
	return nil
}

func (s *CascadeService) publish(ctx context.Context, sub scope.Subject, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	event.Actor = events.Actor{Role: sub.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
