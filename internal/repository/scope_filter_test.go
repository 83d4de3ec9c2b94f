package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workforce-planner/internal/scope"
)

func TestAppendScopeClausesAdminTeamFilterOmitsEmptyOrganization(t *testing.T) {
	s := scope.Scope{
		Kind:    scope.TeamScoped,
		TeamIDs: []string{"team-1"},
	}
	clauses := []string{"1=1"}
	args := []any{}

	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "")

	require.Equal(t, []string{"1=1", "team_id = ANY($1)"}, clauses)
	require.Equal(t, []any{[]string{"team-1"}}, args)
}

func TestAppendScopeClausesManagerCarriesOrganization(t *testing.T) {
	s := scope.Scope{
		Kind:           scope.TeamScoped,
		OrganizationID: "org-1",
		TeamIDs:        []string{"team-1", "team-2"},
	}
	var clauses []string
	var args []any

	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "")

	require.Equal(t, []string{"organization_id=$1", "team_id = ANY($2)"}, clauses)
	require.Equal(t, []any{"org-1", []string{"team-1", "team-2"}}, args)
}

func TestAppendScopeClausesManagerWithoutTeamsMatchesTeamless(t *testing.T) {
	s := scope.Scope{
		Kind:           scope.TeamScoped,
		OrganizationID: "org-1",
	}
	var clauses []string
	var args []any

	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "")

	require.Equal(t, []string{"organization_id=$1", "team_id IS NULL"}, clauses)
	require.Equal(t, []any{"org-1"}, args)
}

func TestAppendScopeClausesSelfScoped(t *testing.T) {
	s := scope.Scope{
		Kind:           scope.SelfScoped,
		OrganizationID: "org-1",
		EmployeeID:     "emp-1",
	}
	var clauses []string
	var args []any

	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "employee_id")

	require.Equal(t, []string{"organization_id=$1", "employee_id=$2"}, clauses)
	require.Equal(t, []any{"org-1", "emp-1"}, args)
}
