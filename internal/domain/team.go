package domain

import "time"

// Team groups employees under an organization. A team carries at least one
// manager; every manager and member reference must resolve at write time.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	ManagerIDs     []string
	MemberIDs      []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasManager reports whether the account manages this team.
func (t *Team) HasManager(accountID string) bool {
	for _, id := range t.ManagerIDs {
		if id == accountID {
			return true
		}
	}
	return false
}
