package dto

import (
	"time"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name     string `json:"name"`
	PlanTier string `json:"plan_tier,omitempty"`
}

// OrganizationResponse describes a tenant.
type OrganizationResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	PlanTier  domain.PlanTier `json:"plan_tier"`
	CreatedAt time.Time       `json:"created_at"`
}

// Organization converts a domain organization to the wire shape.
func Organization(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		PlanTier:  org.PlanTier,
		CreatedAt: org.CreatedAt,
	}
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	OrganizationID string   `json:"organization_id,omitempty"`
	Name           string   `json:"name"`
	ManagerIDs     []string `json:"manager_ids"`
}

// TeamResponse describes a team.
type TeamResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	ManagerIDs     []string  `json:"manager_ids"`
	MemberIDs      []string  `json:"member_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Team converts a domain team to the wire shape.
func Team(team *domain.Team) TeamResponse {
	return TeamResponse{
		ID:             team.ID,
		OrganizationID: team.OrganizationID,
		Name:           team.Name,
		ManagerIDs:     team.ManagerIDs,
		MemberIDs:      team.MemberIDs,
		CreatedAt:      team.CreatedAt,
	}
}

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	OrganizationID string `json:"organization_id,omitempty"`
	TeamID         string `json:"team_id,omitempty"`
	Name           string `json:"name"`
}

// EmployeeResponse describes an employee.
type EmployeeResponse struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organization_id"`
	TeamID         *string               `json:"team_id,omitempty"`
	AccountID      *string               `json:"account_id,omitempty"`
	Name           string                `json:"name"`
	Status         domain.EmployeeStatus `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Employee converts a domain employee to the wire shape.
func Employee(emp *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             emp.ID,
		OrganizationID: emp.OrganizationID,
		TeamID:         emp.TeamID,
		AccountID:      emp.AccountID,
		Name:           emp.Name,
		Status:         emp.Status,
		CreatedAt:      emp.CreatedAt,
	}
}
