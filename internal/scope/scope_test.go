package scope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workforce-planner/internal/domain"
	apperrors "github.com/spec-kit/workforce-planner/pkg/util"
)

func requireForbiddenScope(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "FORBIDDEN_SCOPE", de.Code)
}

func TestResolveAdmin(t *testing.T) {
	sub := Subject{Role: domain.RoleAdmin}

	s, err := Resolve(sub, Filter{})
	require.NoError(t, err)
	require.Equal(t, Unrestricted, s.Kind)

	s, err = Resolve(sub, Filter{OrganizationID: "org-1"})
	require.NoError(t, err)
	require.Equal(t, OrganizationScoped, s.Kind)
	require.Equal(t, "org-1", s.OrganizationID)

	s, err = Resolve(sub, Filter{TeamID: "team-1"})
	require.NoError(t, err)
	require.Equal(t, TeamScoped, s.Kind)
	require.Equal(t, []string{"team-1"}, s.TeamIDs)
}

func TestResolveDirector(t *testing.T) {
	sub := Subject{Role: domain.RoleDirector, OrganizationID: "org-1"}

	s, err := Resolve(sub, Filter{})
	require.NoError(t, err)
	require.Equal(t, OrganizationScoped, s.Kind)
	require.Equal(t, "org-1", s.OrganizationID)

	_, err = Resolve(sub, Filter{OrganizationID: "org-2"})
	requireForbiddenScope(t, err)

	s, err = Resolve(sub, Filter{TeamID: "team-9"})
	require.NoError(t, err)
	require.Equal(t, TeamScoped, s.Kind)
	require.Equal(t, "org-1", s.OrganizationID)
}

func TestResolveManager(t *testing.T) {
	sub := Subject{
		Role:           domain.RoleManager,
		OrganizationID: "org-1",
		ManagedTeamIDs: []string{"team-1", "team-2"},
	}

	s, err := Resolve(sub, Filter{})
	require.NoError(t, err)
	require.Equal(t, TeamScoped, s.Kind)
	require.ElementsMatch(t, []string{"team-1", "team-2"}, s.TeamIDs)

	s, err = Resolve(sub, Filter{TeamID: "team-2"})
	require.NoError(t, err)
	require.Equal(t, []string{"team-2"}, s.TeamIDs)

	_, err = Resolve(sub, Filter{TeamID: "team-3"})
	requireForbiddenScope(t, err)

	_, err = Resolve(sub, Filter{OrganizationID: "org-2"})
	requireForbiddenScope(t, err)
}

func TestResolveManagerWithoutTeams(t *testing.T) {
	sub := Subject{Role: domain.RoleManager, OrganizationID: "org-1"}

	s, err := Resolve(sub, Filter{})
	require.NoError(t, err)
	require.Equal(t, TeamScoped, s.Kind)
	require.Empty(t, s.TeamIDs)
	require.Equal(t, "org-1", s.OrganizationID)
	require.False(t, s.AllowsTeam("org-1", "team-1"))
	require.False(t, s.AllowsTeam("org-2", ""))
}

func TestResolveEmployee(t *testing.T) {
	sub := Subject{
		Role:           domain.RoleEmployee,
		OrganizationID: "org-1",
		EmployeeID:     "emp-1",
		TeamID:         "team-1",
	}

	s, err := Resolve(sub, Filter{})
	require.NoError(t, err)
	require.Equal(t, SelfScoped, s.Kind)
	require.Equal(t, "emp-1", s.EmployeeID)

	s, err = Resolve(sub, Filter{TeamID: "team-1", EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Equal(t, SelfScoped, s.Kind)

	_, err = Resolve(sub, Filter{TeamID: "team-2"})
	requireForbiddenScope(t, err)

	_, err = Resolve(sub, Filter{EmployeeID: "emp-2"})
	requireForbiddenScope(t, err)
}

func TestAllowsTeam(t *testing.T) {
	admin := Scope{Kind: Unrestricted}
	require.True(t, admin.AllowsTeam("org-1", "team-1"))
	require.True(t, admin.AllowsTeam("org-2", ""))

	director := Scope{Kind: OrganizationScoped, OrganizationID: "org-1"}
	require.True(t, director.AllowsTeam("org-1", "team-1"))
	require.False(t, director.AllowsTeam("org-2", "team-1"))

	manager := Scope{Kind: TeamScoped, OrganizationID: "org-1", TeamIDs: []string{"team-1"}}
	require.True(t, manager.AllowsTeam("org-1", "team-1"))
	require.False(t, manager.AllowsTeam("org-1", "team-2"))
	require.False(t, manager.AllowsTeam("org-2", "team-1"))
}
