package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/config"
	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/persistence"
	"github.com/spec-kit/workforce-planner/internal/scope"
)

type cascadeFixture struct {
	svc           *CascadeService
	locks         *persistence.KeyLock
	organizations *fakeOrganizationRepo
	subscriptions *fakeSubscriptionRepo
	teams         *fakeTeamRepo
	employees     *fakeEmployeeRepo
	accounts      *fakeAccountRepo
	schedules     *fakeScheduleRepo
	leaves        *fakeLeaveRepo
	tasks         *fakeTaskRepo
	incidents     *fakeIncidentRepo
}

func newCascadeFixture(t *testing.T) *cascadeFixture {
	t.Helper()
	fx := &cascadeFixture{
		locks:         persistence.NewKeyLock(nil, time.Second),
		organizations: newFakeOrganizationRepo(),
		subscriptions: newFakeSubscriptionRepo(),
		teams:         newFakeTeamRepo(),
		employees:     newFakeEmployeeRepo(),
		accounts:      newFakeAccountRepo(),
		schedules:     newFakeScheduleRepo(),
		leaves:        newFakeLeaveRepo(),
		tasks:         newFakeTaskRepo(),
		incidents:     newFakeIncidentRepo(),
	}
	fx.svc = NewCascadeService(CascadeDependencies{
		OrganizationRepo: fx.organizations,
		SubscriptionRepo: fx.subscriptions,
		TeamRepo:         fx.teams,
		EmployeeRepo:     fx.employees,
		AccountRepo:      fx.accounts,
		ScheduleRepo:     fx.schedules,
		LeaveRepo:        fx.leaves,
		TaskRepo:         fx.tasks,
		IncidentRepo:     fx.incidents,
		Locks:            fx.locks,
		Logger:           zap.NewNop(),
	})
	return fx
}

// seedTenant builds an organization with one team and two employees, each
// carrying a leave request, a task and an incident, sharing one schedule
// record.
func (fx *cascadeFixture) seedTenant(t *testing.T) (org *domain.Organization, team *domain.Team, alice, bob *domain.Employee) {
	t.Helper()
	ctx := context.Background()

	org = fx.organizations.add(domain.Organization{Name: "Acme", PlanTier: domain.PlanTierStandard})
	require.NoError(t, fx.subscriptions.Create(ctx, &domain.Subscription{
		OrganizationID: org.ID, PlanTier: org.PlanTier, Status: "ACTIVE",
	}))
	team = fx.teams.add(domain.Team{OrganizationID: org.ID, Name: "warehouse"})
	alice = fx.employees.add(domain.Employee{
		OrganizationID: org.ID, TeamID: &team.ID, Name: "Alice", Status: domain.EmployeeStatusActive,
	})
	bob = fx.employees.add(domain.Employee{
		OrganizationID: org.ID, TeamID: &team.ID, Name: "Bob", Status: domain.EmployeeStatusActive,
	})

	for _, emp := range []*domain.Employee{alice, bob} {
		fx.leaves.add(domain.LeaveRequest{
			OrganizationID: org.ID, TeamID: &team.ID, EmployeeID: emp.ID,
			Type: domain.LeaveTypeAnnual, Status: domain.LeaveStatusPending,
			StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 2),
		})
		fx.tasks.add(domain.Task{
			OrganizationID: org.ID, TeamID: &team.ID, EmployeeID: emp.ID,
			Title: "restock", Status: domain.TaskStatusOpen,
		})
		fx.incidents.add(domain.Incident{
			OrganizationID: org.ID, TeamID: &team.ID, EmployeeID: emp.ID,
			Title: "spill", Severity: domain.IncidentSeverityLow,
			Status: domain.IncidentStatusReported, OccurredAt: time.Now(),
		})
	}

	rec := &domain.ScheduleRecord{
		OrganizationID: org.ID,
		TeamID:         team.ID,
		WeekStart:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		WeekEnd:        time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Days: map[domain.Weekday][]domain.ShiftEntry{
			domain.Monday: {
				{EmployeeID: alice.ID, Start: "09:00", End: "17:00"},
				{EmployeeID: bob.ID, Start: "17:00", End: "23:00"},
			},
			domain.Tuesday: {
				{EmployeeID: alice.ID, Start: "09:00", End: "17:00"},
			},
		},
	}
	require.NoError(t, fx.schedules.Insert(ctx, rec))
	return org, team, alice, bob
}

func adminSubject() scope.Subject {
	return scope.Subject{Role: domain.RoleAdmin}
}

func TestDeleteEmployeeScrubsRecordsAndLinks(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	org, _, alice, bob := fx.seedTenant(t)

	account := fx.accounts.add(domain.Account{
		Name: "Alice", Email: "alice@acme.test", Role: domain.RoleEmployee,
		OrganizationID: &org.ID, EmployeeID: &alice.ID, Status: domain.AccountStatusActive,
	})

	require.NoError(t, fx.svc.DeleteEmployee(ctx, adminSubject(), alice.ID))

	_, err := fx.employees.GetByID(ctx, alice.ID)
	require.Error(t, err)

	leaves, err := fx.leaves.ListWithScope(ctx, scope.Scope{Kind: scope.Unrestricted})
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, bob.ID, leaves[0].EmployeeID)

	tasks, err := fx.tasks.ListWithScope(ctx, scope.Scope{Kind: scope.Unrestricted})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	incidents, err := fx.incidents.ListWithScope(ctx, scope.Scope{Kind: scope.Unrestricted})
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	// The shared week record survives with only Bob's shifts.
	records, err := fx.schedules.ListWithScope(ctx, scope.Scope{Kind: scope.Unrestricted}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []string{bob.ID}, records[0].EmployeeIDs())
	require.Empty(t, records[0].Days[domain.Tuesday])

	stored, err := fx.accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.Nil(t, stored.EmployeeID)
}

func TestDeleteEmployeeDropsEmptiedRecord(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	org := fx.organizations.add(domain.Organization{Name: "Solo", PlanTier: domain.PlanTierFree})
	team := fx.teams.add(domain.Team{OrganizationID: org.ID, Name: "solo"})
	emp := fx.employees.add(domain.Employee{
		OrganizationID: org.ID, TeamID: &team.ID, Name: "Only", Status: domain.EmployeeStatusActive,
	})
	rec := &domain.ScheduleRecord{
		OrganizationID: org.ID, TeamID: team.ID,
		WeekStart: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		WeekEnd:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Days: map[domain.Weekday][]domain.ShiftEntry{
			domain.Monday: {{EmployeeID: emp.ID, Start: "09:00", End: "17:00"}},
		},
	}
	require.NoError(t, fx.schedules.Insert(ctx, rec))

	require.NoError(t, fx.svc.DeleteEmployee(ctx, adminSubject(), emp.ID))
	require.Empty(t, fx.schedules.records)
}

func TestDeleteEmployeeMissingIsNoOp(t *testing.T) {
	fx := newCascadeFixture(t)
	require.NoError(t, fx.svc.DeleteEmployee(context.Background(), adminSubject(), "never-existed"))
}

func TestDeleteEmployeeOutsideManagerScopeForbidden(t *testing.T) {
	fx := newCascadeFixture(t)
	_, _, alice, _ := fx.seedTenant(t)

	outsider := managerSubject(alice.OrganizationID, "some-other-team")
	err := fx.svc.DeleteEmployee(context.Background(), outsider, alice.ID)
	requireDomainCode(t, err, "FORBIDDEN_SCOPE")
}

func TestDeleteTeamRemovesEverythingTeamOwned(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	org, team, alice, bob := fx.seedTenant(t)

	manager := fx.accounts.add(domain.Account{
		Name: "Mandy", Email: "mandy@acme.test", Role: domain.RoleManager,
		OrganizationID: &org.ID, TeamIDs: []string{team.ID}, Status: domain.AccountStatusActive,
	})

	require.NoError(t, fx.svc.DeleteTeam(ctx, adminSubject(), team.ID))

	_, err := fx.teams.GetByID(ctx, team.ID)
	require.Error(t, err)
	require.Empty(t, fx.schedules.records)
	require.Empty(t, fx.leaves.leaves)
	require.Empty(t, fx.tasks.tasks)
	require.Empty(t, fx.incidents.incidents)

	// Members survive team deletion, detached from the team.
	for _, id := range []string{alice.ID, bob.ID} {
		emp, err := fx.employees.GetByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, emp.TeamID)
	}

	stored, err := fx.accounts.GetByID(ctx, manager.ID)
	require.NoError(t, err)
	require.Empty(t, stored.TeamIDs)
}

func TestDeleteTeamTwiceIsNoOp(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	_, team, _, _ := fx.seedTenant(t)

	require.NoError(t, fx.svc.DeleteTeam(ctx, adminSubject(), team.ID))
	require.NoError(t, fx.svc.DeleteTeam(ctx, adminSubject(), team.ID))
}

func TestDeleteOrganizationRemovesWholeTenant(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	org, _, _, _ := fx.seedTenant(t)

	fx.accounts.add(domain.Account{
		Name: "Dir", Email: "dir@acme.test", Role: domain.RoleDirector,
		OrganizationID: &org.ID, Status: domain.AccountStatusActive,
	})
	// A second tenant that must survive untouched.
	other := fx.organizations.add(domain.Organization{Name: "Other", PlanTier: domain.PlanTierFree})
	otherTeam := fx.teams.add(domain.Team{OrganizationID: other.ID, Name: "other-team"})
	fx.employees.add(domain.Employee{
		OrganizationID: other.ID, TeamID: &otherTeam.ID, Name: "Cara", Status: domain.EmployeeStatusActive,
	})

	require.NoError(t, fx.svc.DeleteOrganization(ctx, adminSubject(), org.ID))

	_, err := fx.organizations.GetByID(ctx, org.ID)
	require.Error(t, err)
	require.Empty(t, fx.schedules.records)
	require.Empty(t, fx.leaves.leaves)
	require.Empty(t, fx.tasks.tasks)
	require.Empty(t, fx.incidents.incidents)
	subs, err := fx.subscriptions.ListByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Empty(t, subs)
	for _, account := range fx.accounts.accounts {
		require.False(t, account.OrganizationID != nil && *account.OrganizationID == org.ID)
	}

	// The other tenant is intact.
	_, err = fx.organizations.GetByID(ctx, other.ID)
	require.NoError(t, err)
	_, err = fx.teams.GetByID(ctx, otherTeam.ID)
	require.NoError(t, err)
	employees, err := fx.employees.ListWithScope(ctx, scope.Scope{Kind: scope.Unrestricted})
	require.NoError(t, err)
	require.Len(t, employees, 1)
}

func TestDeleteOrganizationRequiresAdmin(t *testing.T) {
	fx := newCascadeFixture(t)
	org, _, _, _ := fx.seedTenant(t)

	director := scope.Subject{Role: domain.RoleDirector, OrganizationID: org.ID}
	err := fx.svc.DeleteOrganization(context.Background(), director, org.ID)
	requireDomainCode(t, err, "FORBIDDEN_SCOPE")

	_, getErr := fx.organizations.GetByID(context.Background(), org.ID)
	require.NoError(t, getErr)
}

func TestDeleteOrganizationMissingIsNoOp(t *testing.T) {
	fx := newCascadeFixture(t)
	require.NoError(t, fx.svc.DeleteOrganization(context.Background(), adminSubject(), "ghost-org"))
}

func TestSubmitDuringTeamCascadeLeavesNoOrphanRecord(t *testing.T) {
	fx := newCascadeFixture(t)
	ctx := context.Background()
	org, team, alice, _ := fx.seedTenant(t)

	scheduleSvc := NewScheduleService(config.ScheduleConfig{SubmitRetries: 3}, ScheduleDependencies{
		ScheduleRepo: fx.schedules,
		EmployeeRepo: fx.employees,
		TeamRepo:     fx.teams,
		Locks:        fx.locks,
		Logger:       zap.NewNop(),
	})

	// The full team cascade completes while the submission sits inside its
	// locked read-merge-write, after its first tombstone check has passed.
	fx.schedules.beforeGetByWeek = func() {
		require.NoError(t, fx.svc.DeleteTeam(ctx, adminSubject(), team.ID))
	}

	sub := scope.Subject{
		Role:           domain.RoleEmployee,
		OrganizationID: org.ID,
		EmployeeID:     alice.ID,
		TeamID:         team.ID,
	}
	_, err := scheduleSvc.Submit(ctx, sub, ScheduleSubmission{
		EmployeeID: alice.ID,
		Year:       2025,
		WeekNumber: 10,
		Days:       map[string][]string{"monday": {"09:00-17:00"}},
	})
	requireDomainCode(t, err, "NOT_FOUND")

	// Nothing the cascade swept may reappear.
	require.Empty(t, fx.schedules.records)
}
