package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/config"
	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// AuthService coordinates account registration and login flows.
type AuthService struct {
	accounts   repository.AccountRepository
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	AccountRepo  repository.AccountRepository
	EmployeeRepo repository.EmployeeRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:   deps.AccountRepo,
		employees:  deps.EmployeeRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput carries account creation parameters. Roles below ADMIN
// require an organization; an EMPLOYEE account may link to an employee
// record in the same organization.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	OrganizationID string
	EmployeeID     string
}

// Register creates a login account. Only admins create accounts for other
// organizations; directors create accounts inside their own.
func (s *AuthService) Register(ctx context.Context, sub scope.Subject, input RegisterInput) (*domain.Account, error) {
	role, err := parseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if sub.Role != domain.RoleAdmin {
		if sub.Role != domain.RoleDirector {
			return nil, apperrors.NewForbiddenScope("account creation requires admin or director", nil)
		}
		if role == domain.RoleAdmin {
			return nil, apperrors.NewForbiddenScope("directors cannot create admin accounts", nil)
		}
		if input.OrganizationID != "" && input.OrganizationID != sub.OrganizationID {
			return nil, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
				"organization_id": input.OrganizationID,
			})
		}
		input.OrganizationID = sub.OrganizationID
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("email is invalid", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if role != domain.RoleAdmin && input.OrganizationID == "" {
		return nil, apperrors.NewValidationError("organization id is required for this role", map[string]any{
			"role": string(role),
		})
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	account := &domain.Account{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.AccountStatusActive,
	}
	if role != domain.RoleAdmin {
		orgID := input.OrganizationID
		account.OrganizationID = &orgID
	}
	if input.EmployeeID != "" {
		if role != domain.RoleEmployee {
			return nil, apperrors.NewValidationError("only employee accounts link to employee records", nil)
		}
		employee, err := s.employees.GetByID(ctx, input.EmployeeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": input.EmployeeID})
			}
			return nil, apperrors.MapError(err)
		}
		if employee.OrganizationID != input.OrganizationID {
			return nil, apperrors.NewValidationError("employee belongs to another organization", map[string]any{
				"employee_id": input.EmployeeID,
			})
		}
		account.EmployeeID = &employee.ID
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}

	if account.EmployeeID != nil {
		employee, err := s.employees.GetByID(ctx, *account.EmployeeID)
		if err == nil {
			employee.AccountID = &account.ID
			_ = s.employees.Update(ctx, employee)
		}
	}
	return account, nil
}

// Login authenticates an account and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if account.Status != domain.AccountStatusActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return account, token, exp, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	account.PasswordHash = hash
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func parseRole(raw string) (domain.Role, error) {
	switch role := domain.Role(strings.ToUpper(raw)); role {
	case domain.RoleAdmin, domain.RoleDirector, domain.RoleManager, domain.RoleEmployee:
		return role, nil
	default:
		return "", apperrors.NewValidationError("unknown role", map[string]any{"role": raw})
	}
}
