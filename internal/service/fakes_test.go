package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
)

// In-memory repository doubles. They mirror the store contracts the services
// rely on, including version checking and duplicate-key detection, so merge
// and cascade behavior can be exercised without Postgres.

type fakeScheduleRepo struct {
	records map[string]*domain.ScheduleRecord
	getErr  error

	// conflictNext forces the next N UpdateDays calls to lose the version
	// race, exercising the caller's retry path.
	conflictNext int

	// beforeGetByWeek runs at the start of GetByWeek, letting a test
	// interleave another operation inside a caller's critical section.
	beforeGetByWeek func()
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{records: make(map[string]*domain.ScheduleRecord)}
}

func scheduleKey(orgID, teamID string, weekStart time.Time) string {
	return orgID + "|" + teamID + "|" + weekStart.Format("2006-01-02")
}

func cloneRecord(rec *domain.ScheduleRecord) *domain.ScheduleRecord {
	out := *rec
	out.Days = make(map[domain.Weekday][]domain.ShiftEntry, len(rec.Days))
	for day, entries := range rec.Days {
		out.Days[day] = append([]domain.ShiftEntry(nil), entries...)
	}
	return &out
}

func (f *fakeScheduleRepo) Insert(_ context.Context, rec *domain.ScheduleRecord) error {
	for _, existing := range f.records {
		if scheduleKey(existing.OrganizationID, existing.TeamID, existing.WeekStart) ==
			scheduleKey(rec.OrganizationID, rec.TeamID, rec.WeekStart) {
			return repository.ErrDuplicateWeek
		}
	}
	rec.ID = uuid.NewString()
	rec.Version = 1
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (f *fakeScheduleRepo) UpdateDays(_ context.Context, rec *domain.ScheduleRecord) error {
	if f.conflictNext > 0 {
		f.conflictNext--
		return repository.ErrVersionConflict
	}
	stored, ok := f.records[rec.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != rec.Version {
		return repository.ErrVersionConflict
	}
	rec.Version++
	rec.UpdatedAt = time.Now()
	f.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id string) (*domain.ScheduleRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneRecord(rec), nil
}

func (f *fakeScheduleRepo) GetByWeek(_ context.Context, orgID, teamID string, weekStart time.Time) (*domain.ScheduleRecord, error) {
	if f.beforeGetByWeek != nil {
		hook := f.beforeGetByWeek
		f.beforeGetByWeek = nil
		hook()
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	key := scheduleKey(orgID, teamID, weekStart)
	for _, rec := range f.records {
		if scheduleKey(rec.OrganizationID, rec.TeamID, rec.WeekStart) == key {
			return cloneRecord(rec), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeScheduleRepo) ListWithScope(_ context.Context, s scope.Scope, weekStart *time.Time) ([]domain.ScheduleRecord, error) {
	var out []domain.ScheduleRecord
	for _, rec := range f.records {
		if !s.AllowsTeam(rec.OrganizationID, rec.TeamID) {
			continue
		}
		if weekStart != nil && !rec.WeekStart.Equal(*weekStart) {
			continue
		}
		out = append(out, *cloneRecord(rec))
	}
	return out, nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeScheduleRepo) DeleteByTeam(_ context.Context, teamID string) error {
	for id, rec := range f.records {
		if rec.TeamID == teamID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeScheduleRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, rec := range f.records {
		if rec.OrganizationID == orgID {
			delete(f.records, id)
		}
	}
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]*domain.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*domain.Employee)}
}

func (f *fakeEmployeeRepo) add(emp domain.Employee) *domain.Employee {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	stored := emp
	f.employees[stored.ID] = &stored
	return &stored
}

func (f *fakeEmployeeRepo) Create(_ context.Context, emp *domain.Employee) error {
	emp.ID = uuid.NewString()
	stored := *emp
	f.employees[emp.ID] = &stored
	return nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, emp *domain.Employee) error {
	if _, ok := f.employees[emp.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *emp
	f.employees[emp.ID] = &stored
	return nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *emp
	return &out, nil
}

func (f *fakeEmployeeRepo) GetByAccount(_ context.Context, accountID string) (*domain.Employee, error) {
	for _, emp := range f.employees {
		if emp.AccountID != nil && *emp.AccountID == accountID {
			out := *emp
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeEmployeeRepo) ListByTeam(_ context.Context, teamID string) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, emp := range f.employees {
		if emp.TeamID != nil && *emp.TeamID == teamID {
			out = append(out, *emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListWithScope(_ context.Context, s scope.Scope) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, emp := range f.employees {
		teamID := ""
		if emp.TeamID != nil {
			teamID = *emp.TeamID
		}
		if !s.AllowsTeam(emp.OrganizationID, teamID) {
			continue
		}
		if s.EmployeeID != "" && emp.ID != s.EmployeeID {
			continue
		}
		out = append(out, *emp)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) DetachTeam(_ context.Context, teamID string) error {
	for _, emp := range f.employees {
		if emp.TeamID != nil && *emp.TeamID == teamID {
			emp.TeamID = nil
		}
	}
	return nil
}

func (f *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	delete(f.employees, id)
	return nil
}

func (f *fakeEmployeeRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, emp := range f.employees {
		if emp.OrganizationID == orgID {
			delete(f.employees, id)
		}
	}
	return nil
}

type fakeTeamRepo struct {
	teams map[string]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*domain.Team)}
}

func (f *fakeTeamRepo) add(team domain.Team) *domain.Team {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	stored := team
	f.teams[stored.ID] = &stored
	return &stored
}

func (f *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	team.ID = uuid.NewString()
	stored := *team
	f.teams[team.ID] = &stored
	return nil
}

func (f *fakeTeamRepo) Update(_ context.Context, team *domain.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *team
	f.teams[team.ID] = &stored
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *team
	return &out, nil
}

func (f *fakeTeamRepo) ListByOrganization(_ context.Context, orgID string) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range f.teams {
		if team.OrganizationID == orgID {
			out = append(out, *team)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListWithScope(_ context.Context, s scope.Scope) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range f.teams {
		if !s.AllowsTeam(team.OrganizationID, team.ID) {
			continue
		}
		out = append(out, *team)
	}
	return out, nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id string) error {
	delete(f.teams, id)
	return nil
}

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccountRepo) add(account domain.Account) *domain.Account {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	stored := account
	f.accounts[stored.ID] = &stored
	return &stored
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	account.ID = uuid.NewString()
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	if _, ok := f.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *account
	return &out, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			out := *account
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) RemoveTeamFromAll(_ context.Context, teamID string) error {
	for _, account := range f.accounts {
		var kept []string
		for _, id := range account.TeamIDs {
			if id != teamID {
				kept = append(kept, id)
			}
		}
		account.TeamIDs = kept
	}
	return nil
}

func (f *fakeAccountRepo) DetachEmployee(_ context.Context, employeeID string) error {
	for _, account := range f.accounts {
		if account.EmployeeID != nil && *account.EmployeeID == employeeID {
			account.EmployeeID = nil
		}
	}
	return nil
}

func (f *fakeAccountRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, account := range f.accounts {
		if account.OrganizationID != nil && *account.OrganizationID == orgID {
			delete(f.accounts, id)
		}
	}
	return nil
}

type fakeOrganizationRepo struct {
	organizations map[string]*domain.Organization
}

func newFakeOrganizationRepo() *fakeOrganizationRepo {
	return &fakeOrganizationRepo{organizations: make(map[string]*domain.Organization)}
}

func (f *fakeOrganizationRepo) add(org domain.Organization) *domain.Organization {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	stored := org
	f.organizations[stored.ID] = &stored
	return &stored
}

func (f *fakeOrganizationRepo) Create(_ context.Context, org *domain.Organization) error {
	org.ID = uuid.NewString()
	stored := *org
	f.organizations[org.ID] = &stored
	return nil
}

func (f *fakeOrganizationRepo) Update(_ context.Context, org *domain.Organization) error {
	if _, ok := f.organizations[org.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *org
	f.organizations[org.ID] = &stored
	return nil
}

func (f *fakeOrganizationRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	org, ok := f.organizations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *org
	return &out, nil
}

func (f *fakeOrganizationRepo) List(_ context.Context) ([]domain.Organization, error) {
	var out []domain.Organization
	for _, org := range f.organizations {
		out = append(out, *org)
	}
	return out, nil
}

func (f *fakeOrganizationRepo) Delete(_ context.Context, id string) error {
	delete(f.organizations, id)
	return nil
}

type fakeSubscriptionRepo struct {
	subscriptions map[string]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subscriptions: make(map[string]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) error {
	sub.ID = uuid.NewString()
	stored := *sub
	f.subscriptions[sub.ID] = &stored
	return nil
}

func (f *fakeSubscriptionRepo) ListByOrganization(_ context.Context, orgID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, sub := range f.subscriptions {
		if sub.OrganizationID == orgID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, sub := range f.subscriptions {
		if sub.OrganizationID == orgID {
			delete(f.subscriptions, id)
		}
	}
	return nil
}

type fakeLeaveRepo struct {
	leaves map[string]*domain.LeaveRequest
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{leaves: make(map[string]*domain.LeaveRequest)}
}

func (f *fakeLeaveRepo) add(leave domain.LeaveRequest) *domain.LeaveRequest {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	stored := leave
	f.leaves[stored.ID] = &stored
	return &stored
}

func (f *fakeLeaveRepo) Create(_ context.Context, leave *domain.LeaveRequest) error {
	leave.ID = uuid.NewString()
	stored := *leave
	f.leaves[leave.ID] = &stored
	return nil
}

func (f *fakeLeaveRepo) Update(_ context.Context, leave *domain.LeaveRequest) error {
	if _, ok := f.leaves[leave.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *leave
	f.leaves[leave.ID] = &stored
	return nil
}

func (f *fakeLeaveRepo) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	leave, ok := f.leaves[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *leave
	return &out, nil
}

func (f *fakeLeaveRepo) ListWithScope(_ context.Context, s scope.Scope) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, leave := range f.leaves {
		teamID := ""
		if leave.TeamID != nil {
			teamID = *leave.TeamID
		}
		if !s.AllowsTeam(leave.OrganizationID, teamID) {
			continue
		}
		if s.EmployeeID != "" && leave.EmployeeID != s.EmployeeID {
			continue
		}
		out = append(out, *leave)
	}
	return out, nil
}

func (f *fakeLeaveRepo) DeleteByEmployee(_ context.Context, employeeID string) error {
	for id, leave := range f.leaves {
		if leave.EmployeeID == employeeID {
			delete(f.leaves, id)
		}
	}
	return nil
}

func (f *fakeLeaveRepo) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	for _, id := range employeeIDs {
		if err := f.DeleteByEmployee(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLeaveRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, leave := range f.leaves {
		if leave.OrganizationID == orgID {
			delete(f.leaves, id)
		}
	}
	return nil
}

type fakeTaskRepo struct {
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (f *fakeTaskRepo) add(task domain.Task) *domain.Task {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	stored := task
	f.tasks[stored.ID] = &stored
	return &stored
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	task.ID = uuid.NewString()
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *task
	return &out, nil
}

func (f *fakeTaskRepo) ListWithScope(_ context.Context, s scope.Scope) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range f.tasks {
		teamID := ""
		if task.TeamID != nil {
			teamID = *task.TeamID
		}
		if !s.AllowsTeam(task.OrganizationID, teamID) {
			continue
		}
		if s.EmployeeID != "" && task.EmployeeID != s.EmployeeID {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) DeleteByEmployee(_ context.Context, employeeID string) error {
	for id, task := range f.tasks {
		if task.EmployeeID == employeeID {
			delete(f.tasks, id)
		}
	}
	return nil
}

func (f *fakeTaskRepo) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	for _, id := range employeeIDs {
		if err := f.DeleteByEmployee(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, task := range f.tasks {
		if task.OrganizationID == orgID {
			delete(f.tasks, id)
		}
	}
	return nil
}

type fakeIncidentRepo struct {
	incidents map[string]*domain.Incident
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

func (f *fakeIncidentRepo) add(incident domain.Incident) *domain.Incident {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	stored := incident
	f.incidents[stored.ID] = &stored
	return &stored
}

func (f *fakeIncidentRepo) Create(_ context.Context, incident *domain.Incident) error {
	incident.ID = uuid.NewString()
	stored := *incident
	f.incidents[incident.ID] = &stored
	return nil
}

func (f *fakeIncidentRepo) Update(_ context.Context, incident *domain.Incident) error {
	if _, ok := f.incidents[incident.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *incident
	f.incidents[incident.ID] = &stored
	return nil
}

func (f *fakeIncidentRepo) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	incident, ok := f.incidents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *incident
	return &out, nil
}

func (f *fakeIncidentRepo) ListWithScope(_ context.Context, s scope.Scope) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, incident := range f.incidents {
		teamID := ""
		if incident.TeamID != nil {
			teamID = *incident.TeamID
		}
		if !s.AllowsTeam(incident.OrganizationID, teamID) {
			continue
		}
		if s.EmployeeID != "" && incident.EmployeeID != s.EmployeeID {
			continue
		}
		out = append(out, *incident)
	}
	return out, nil
}

func (f *fakeIncidentRepo) DeleteByEmployee(_ context.Context, employeeID string) error {
	for id, incident := range f.incidents {
		if incident.EmployeeID == employeeID {
			delete(f.incidents, id)
		}
	}
	return nil
}

func (f *fakeIncidentRepo) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	for _, id := range employeeIDs {
		if err := f.DeleteByEmployee(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeIncidentRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	for id, incident := range f.incidents {
		if incident.OrganizationID == orgID {
			delete(f.incidents, id)
		}
	}
	return nil
}
