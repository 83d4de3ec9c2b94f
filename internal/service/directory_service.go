package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// DirectoryService manages the tenant hierarchy: organizations, their teams
// and their employees. Deletion lives in CascadeService.
type DirectoryService struct {
	organizations repository.OrganizationRepository
	subscriptions repository.SubscriptionRepository
	teams         repository.TeamRepository
	employees     repository.EmployeeRepository
	accounts      repository.AccountRepository
	logger        *zap.Logger
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	SubscriptionRepo repository.SubscriptionRepository
	TeamRepo         repository.TeamRepository
	EmployeeRepo     repository.EmployeeRepository
	AccountRepo      repository.AccountRepository
	Logger           *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		organizations: deps.OrganizationRepo,
		subscriptions: deps.SubscriptionRepo,
		teams:         deps.TeamRepo,
		employees:     deps.EmployeeRepo,
		accounts:      deps.AccountRepo,
		logger:        deps.Logger,
	}
}

// CreateOrganizationInput carries tenant creation parameters.
type CreateOrganizationInput struct {
	Name     string
	PlanTier string
}

// CreateOrganization provisions a tenant with an initial subscription.
func (s *DirectoryService) CreateOrganization(ctx context.Context, sub scope.Subject, input CreateOrganizationInput) (*domain.Organization, error) {
	if sub.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenScope("organization creation requires admin", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("organization name is required", nil)
	}
	tier, err := parsePlanTier(input.PlanTier)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{Name: name, PlanTier: tier}
	if err := s.organizations.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	subscription := &domain.Subscription{
		OrganizationID: org.ID,
		PlanTier:       tier,
		Status:         "ACTIVE",
	}
	if err := s.subscriptions.Create(ctx, subscription); err != nil {
		s.logger.Error("initial subscription write failed",
			zap.String("organization_id", org.ID), zap.Error(err))
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// GetOrganization returns one tenant visible to the caller.
func (s *DirectoryService) GetOrganization(ctx context.Context, sub scope.Subject, id string) (*domain.Organization, error) {
	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return nil, err
	}
	if resolved.Kind != scope.Unrestricted && resolved.OrganizationID != id {
		return nil, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
			"organization_id": id,
		})
	}
	org, err := s.organizations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations returns all tenants for admins, or the caller's own
// tenant as a single-element list for everyone else.
func (s *DirectoryService) ListOrganizations(ctx context.Context, sub scope.Subject) ([]domain.Organization, error) {
	if sub.Role == domain.RoleAdmin {
		orgs, err := s.organizations.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return orgs, nil
	}
	org, err := s.GetOrganization(ctx, sub, sub.OrganizationID)
	if err != nil {
		return nil, err
	}
	return []domain.Organization{*org}, nil
}

// CreateTeamInput carries team creation parameters.
type CreateTeamInput struct {
	OrganizationID string
	Name           string
	ManagerIDs     []string
}

// CreateTeam makes a team under an organization. At least one manager account
// must be named, and every named manager must exist with the MANAGER role in
// the same organization; each manager's account gains the new team.
func (s *DirectoryService) CreateTeam(ctx context.Context, sub scope.Subject, input CreateTeamInput) (*domain.Team, error) {
	if sub.Role != domain.RoleAdmin && sub.Role != domain.RoleDirector {
		return nil, apperrors.NewForbiddenScope("team creation requires admin or director", nil)
	}
	orgID := input.OrganizationID
	if sub.Role == domain.RoleDirector {
		if orgID != "" && orgID != sub.OrganizationID {
			return nil, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
				"organization_id": orgID,
			})
		}
		orgID = sub.OrganizationID
	}
	if orgID == "" {
		return nil, apperrors.NewValidationError("organization id is required", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", nil)
	}
	if len(input.ManagerIDs) == 0 {
		return nil, apperrors.NewValidationError("team requires at least one manager", nil)
	}

	if _, err := s.organizations.GetByID(ctx, orgID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": orgID})
		}
		return nil, apperrors.MapError(err)
	}

	managers, err := s.resolveManagers(ctx, orgID, input.ManagerIDs)
	if err != nil {
		return nil, err
	}

	team := &domain.Team{
		OrganizationID: orgID,
		Name:           name,
	}
	// A manager listed twice is recorded, and assigned the team, once.
	assigned := make([]*domain.Account, 0, len(managers))
	for _, manager := range managers {
		if team.HasManager(manager.ID) {
			continue
		}
		team.ManagerIDs = append(team.ManagerIDs, manager.ID)
		assigned = append(assigned, manager)
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, manager := range assigned {
		manager.TeamIDs = append(manager.TeamIDs, team.ID)
		if err := s.accounts.Update(ctx, manager); err != nil {
			s.logger.Error("manager team assignment failed",
				zap.String("account_id", manager.ID), zap.String("team_id", team.ID), zap.Error(err))
			return nil, apperrors.MapError(err)
		}
	}
	return team, nil
}

func (s *DirectoryService) resolveManagers(ctx context.Context, orgID string, managerIDs []string) ([]*domain.Account, error) {
	managers := make([]*domain.Account, 0, len(managerIDs))
	for _, id := range managerIDs {
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("manager account does not exist", map[string]any{
					"account_id": id,
				})
			}
			return nil, apperrors.MapError(err)
		}
		if account.Role != domain.RoleManager {
			return nil, apperrors.NewValidationError("manager account must have manager role", map[string]any{
				"account_id": id, "role": string(account.Role),
			})
		}
		if account.OrganizationID == nil || *account.OrganizationID != orgID {
			return nil, apperrors.NewValidationError("manager account belongs to another organization", map[string]any{
				"account_id": id,
			})
		}
		managers = append(managers, account)
	}
	return managers, nil
}

// GetTeam returns one team visible to the caller.
func (s *DirectoryService) GetTeam(ctx context.Context, sub scope.Subject, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return nil, err
	}
	if sub.Role == domain.RoleEmployee {
		if sub.TeamID != team.ID {
			return nil, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{"team_id": id})
		}
	} else if !resolved.AllowsTeam(team.OrganizationID, team.ID) {
		return nil, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{"team_id": id})
	}
	return team, nil
}

// ListTeams returns the teams visible to the caller, optionally narrowed to
// one organization.
func (s *DirectoryService) ListTeams(ctx context.Context, sub scope.Subject, organizationID string) ([]domain.Team, error) {
	resolved, err := scope.Resolve(sub, scope.Filter{OrganizationID: organizationID})
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.ListWithScope(ctx, resolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// CreateEmployeeInput carries employee creation parameters.
type CreateEmployeeInput struct {
	OrganizationID string
	TeamID         string
	Name           string
}

// CreateEmployee adds a worker to an organization and, optionally, a team.
func (s *DirectoryService) CreateEmployee(ctx context.Context, sub scope.Subject, input CreateEmployeeInput) (*domain.Employee, error) {
	if sub.Role == domain.RoleEmployee {
		return nil, apperrors.NewForbiddenScope("employee creation requires elevated role", nil)
	}
	orgID := input.OrganizationID
	if sub.Role != domain.RoleAdmin {
		if orgID != "" && orgID != sub.OrganizationID {
			return nil, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
				"organization_id": orgID,
			})
		}
		orgID = sub.OrganizationID
	}
	if orgID == "" {
		return nil, apperrors.NewValidationError("organization id is required", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("employee name is required", nil)
	}

	employee := &domain.Employee{
		OrganizationID: orgID,
		Name:           name,
		Status:         domain.EmployeeStatusActive,
	}
	if input.TeamID != "" {
		team, err := s.teams.GetByID(ctx, input.TeamID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("team", map[string]any{"team_id": input.TeamID})
			}
			return nil, apperrors.MapError(err)
		}
		if team.OrganizationID != orgID {
			return nil, apperrors.NewValidationError("team belongs to another organization", map[string]any{
				"team_id": input.TeamID,
			})
		}
		resolved, err := scope.Resolve(sub, scope.Filter{})
		if err != nil {
			return nil, err
		}
		if !resolved.AllowsTeam(team.OrganizationID, team.ID) {
			return nil, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{
				"team_id": input.TeamID,
			})
		}
		employee.TeamID = &team.ID
	}

	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// GetEmployee returns one employee visible to the caller.
func (s *DirectoryService) GetEmployee(ctx context.Context, sub scope.Subject, id string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	resolved, err := scope.Resolve(sub, scope.Filter{})
	if err != nil {
		return nil, err
	}
	if resolved.Kind == scope.SelfScoped {
		if resolved.EmployeeID != employee.ID {
			return nil, apperrors.NewForbiddenScope("employee outside caller scope", map[string]any{"employee_id": id})
		}
		return employee, nil
	}
	teamID := ""
	if employee.TeamID != nil {
		teamID = *employee.TeamID
	}
	if !resolved.AllowsTeam(employee.OrganizationID, teamID) {
		return nil, apperrors.NewForbiddenScope("employee outside caller scope", map[string]any{"employee_id": id})
	}
	return employee, nil
}

// ListEmployees returns the employees visible to the caller, optionally
// narrowed to one team.
func (s *DirectoryService) ListEmployees(ctx context.Context, sub scope.Subject, teamID string) ([]domain.Employee, error) {
	resolved, err := scope.Resolve(sub, scope.Filter{TeamID: teamID})
	if err != nil {
		return nil, err
	}
	employees, err := s.employees.ListWithScope(ctx, resolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

func parsePlanTier(raw string) (domain.PlanTier, error) {
	if raw == "" {
		return domain.PlanTierFree, nil
	}
	switch tier := domain.PlanTier(strings.ToUpper(raw)); tier {
	case domain.PlanTierFree, domain.PlanTierStandard, domain.PlanTierPremium, domain.PlanTierEnterprise:
		return tier, nil
	default:
		return "", apperrors.NewValidationError("unknown plan tier", map[string]any{"plan_tier": raw})
	}
}
