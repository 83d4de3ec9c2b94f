package dto

import (
	"time"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	EmployeeID     string `json:"employee_id,omitempty"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AccountResponse describes a login account.
type AccountResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	OrganizationID *string     `json:"organization_id,omitempty"`
	EmployeeID     *string     `json:"employee_id,omitempty"`
	TeamIDs        []string    `json:"team_ids,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AuthResponse wraps an account with its issued token.
type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Account converts a domain account to the wire shape.
func Account(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:             account.ID,
		Name:           account.Name,
		Email:          account.Email,
		Role:           account.Role,
		OrganizationID: account.OrganizationID,
		EmployeeID:     account.EmployeeID,
		TeamIDs:        account.TeamIDs,
		CreatedAt:      account.CreatedAt,
	}
}
