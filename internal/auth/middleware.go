package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/scope"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account  *domain.Account
	Employee *domain.Employee
}

// ScopeSubject projects the principal into the resolver's identity surface.
func (p *Principal) ScopeSubject() scope.Subject {
	sub := scope.Subject{Role: p.Account.Role}
	if p.Account.OrganizationID != nil {
		sub.OrganizationID = *p.Account.OrganizationID
	}
	sub.ManagedTeamIDs = p.Account.TeamIDs
	if p.Employee != nil {
		sub.EmployeeID = p.Employee.ID
		if p.Employee.TeamID != nil {
			sub.TeamID = *p.Employee.TeamID
		}
	}
	return sub
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens    *TokenManager
	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository, employees repository.EmployeeRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, employees: employees}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}
	if account.Status != domain.AccountStatusActive {
		return apperrors.NewUnauthorized("account suspended")
	}

	principal := &Principal{Account: account}
	if account.EmployeeID != nil {
		employee, err := m.employees.GetByID(c.Context(), *account.EmployeeID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		if err == nil {
			principal.Employee = employee
		}
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
