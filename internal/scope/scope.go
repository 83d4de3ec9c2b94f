// Package scope computes read/write visibility boundaries from a caller's
// role and organizational affiliation. Resolution is pure: it produces a
// declarative filter consumed uniformly by every read path, replacing ad hoc
// per-role branching.
package scope

import (
	"github.com/spec-kit/workforce-planner/internal/domain"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

// Kind tags the scope variant.
type Kind int

const (
	// Unrestricted matches all organizations (ADMIN).
	Unrestricted Kind = iota
	// OrganizationScoped confines reads to one organization (DIRECTOR).
	OrganizationScoped
	// TeamScoped confines reads to managed teams within one organization (MANAGER).
	TeamScoped
	// SelfScoped confines reads to records involving one employee (EMPLOYEE).
	SelfScoped
)

// Scope is the resolved filter. Fields beyond the kind's mandatory predicate
// act as optional narrowing supplied by the caller and already validated
// against the subject's affiliation.
type Scope struct {
	Kind           Kind
	OrganizationID string
	TeamIDs        []string
	EmployeeID     string
}

// Subject is the requester's identity surface, supplied by the auth layer.
type Subject struct {
	Role           domain.Role
	OrganizationID string
	EmployeeID     string
	TeamID         string   // employee's own team, if any
	ManagedTeamIDs []string // teams a MANAGER manages
}

// Filter carries the explicit narrowing parameters of a request.
type Filter struct {
	OrganizationID string
	TeamID         string
	EmployeeID     string
}

// Resolve computes the scope for a subject, honoring explicit filters only
// when they stay inside the subject's affiliation.
func Resolve(sub Subject, f Filter) (Scope, error) {
	switch sub.Role {
	case domain.RoleAdmin:
		return resolveAdmin(f), nil
	case domain.RoleDirector:
		return resolveDirector(sub, f)
	case domain.RoleManager:
		return resolveManager(sub, f)
	case domain.RoleEmployee:
		return resolveEmployee(sub, f)
	default:
		return Scope{}, apperrors.NewForbiddenScope("unknown role", map[string]any{"role": string(sub.Role)})
	}
}

func resolveAdmin(f Filter) Scope {
	s := Scope{Kind: Unrestricted, OrganizationID: f.OrganizationID, EmployeeID: f.EmployeeID}
	if f.TeamID != "" {
		s.Kind = TeamScoped
		s.TeamIDs = []string{f.TeamID}
		return s
	}
	if f.OrganizationID != "" {
		s.Kind = OrganizationScoped
	}
	return s
}

func resolveDirector(sub Subject, f Filter) (Scope, error) {
	if f.OrganizationID != "" && f.OrganizationID != sub.OrganizationID {
		return Scope{}, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
			"organization_id": f.OrganizationID,
		})
	}
	s := Scope{Kind: OrganizationScoped, OrganizationID: sub.OrganizationID, EmployeeID: f.EmployeeID}
	if f.TeamID != "" {
		s.Kind = TeamScoped
		s.TeamIDs = []string{f.TeamID}
	}
	return s, nil
}

func resolveManager(sub Subject, f Filter) (Scope, error) {
	if f.OrganizationID != "" && f.OrganizationID != sub.OrganizationID {
		return Scope{}, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
			"organization_id": f.OrganizationID,
		})
	}
	teamIDs := sub.ManagedTeamIDs
	if f.TeamID != "" {
		if !contains(teamIDs, f.TeamID) {
			return Scope{}, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{
				"team_id": f.TeamID,
			})
		}
		teamIDs = []string{f.TeamID}
	}
	// A manager with zero teams still stays confined to their organization;
	// the empty team set matches only that organization's team-less records.
	return Scope{
		Kind:           TeamScoped,
		OrganizationID: sub.OrganizationID,
		TeamIDs:        teamIDs,
		EmployeeID:     f.EmployeeID,
	}, nil
}

func resolveEmployee(sub Subject, f Filter) (Scope, error) {
	if f.OrganizationID != "" && f.OrganizationID != sub.OrganizationID {
		return Scope{}, apperrors.NewForbiddenScope("organization outside caller scope", map[string]any{
			"organization_id": f.OrganizationID,
		})
	}
	if f.TeamID != "" && f.TeamID != sub.TeamID {
		return Scope{}, apperrors.NewForbiddenScope("team outside caller scope", map[string]any{
			"team_id": f.TeamID,
		})
	}
	if f.EmployeeID != "" && f.EmployeeID != sub.EmployeeID {
		return Scope{}, apperrors.NewForbiddenScope("employee outside caller scope", map[string]any{
			"employee_id": f.EmployeeID,
		})
	}
	return Scope{
		Kind:           SelfScoped,
		OrganizationID: sub.OrganizationID,
		EmployeeID:     sub.EmployeeID,
	}, nil
}

// AllowsTeam reports whether records of the given team are visible.
func (s Scope) AllowsTeam(organizationID, teamID string) bool {
	switch s.Kind {
	case Unrestricted:
		return s.OrganizationID == "" || s.OrganizationID == organizationID
	case OrganizationScoped:
		return s.OrganizationID == organizationID
	case TeamScoped:
		if s.OrganizationID != "" && s.OrganizationID != organizationID {
			return false
		}
		return teamID == "" || contains(s.TeamIDs, teamID)
	case SelfScoped:
		return s.OrganizationID == organizationID
	default:
		return false
	}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
