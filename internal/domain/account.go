package domain

import "time"

// Role enumerates access levels for accounts.
type Role string

const (
	RoleAdmin    Role = "ADMIN"    // unrestricted, all organizations
	RoleDirector Role = "DIRECTOR" // own organization
	RoleManager  Role = "MANAGER"  // teams they manage within their organization
	RoleEmployee Role = "EMPLOYEE" // own records only
)

// AccountStatus represents lifecycle states for a login account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account is a login identity. ADMIN accounts carry no organization;
// every other role is affiliated with exactly one. TeamIDs holds the
// teams a MANAGER manages.
type Account struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID *string
	EmployeeID     *string
	TeamIDs        []string
	Status         AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
