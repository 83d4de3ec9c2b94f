package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-planner/internal/api/dto"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/service"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// AccountsHandler manages registration, login and password changes.
type AccountsHandler struct {
	service *service.AuthService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService) *AccountsHandler {
	return &AccountsHandler{service: authService}
}

// Register POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.service.Register(c.UserContext(), principal.ScopeSubject(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		EmployeeID:     req.EmployeeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Account(account)})
}

// Login POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	account, token, expiresAt, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Account:   dto.Account(account),
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// ChangePassword POST /auth/password/change.
func (h *AccountsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ChangePassword(c.UserContext(), principal.Account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}
