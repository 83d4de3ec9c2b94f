package repository

import (
	"fmt"

	"github.com/spec-kit/workforce-planner/internal/scope"
)

// appendScopeClauses translates a resolved scope into SQL predicates. Column
// names are caller-supplied so the same translation serves every collection;
// an empty column name skips the corresponding predicate.
func appendScopeClauses(s scope.Scope, clauses *[]string, args *[]any, orgCol, teamCol, empCol string) {
	switch s.Kind {
	case scope.Unrestricted:
		if s.OrganizationID != "" && orgCol != "" {
			*args = append(*args, s.OrganizationID)
			*clauses = append(*clauses, fmt.Sprintf("%s=$%d", orgCol, len(*args)))
		}
	case scope.OrganizationScoped:
		if orgCol != "" {
			*args = append(*args, s.OrganizationID)
			*clauses = append(*clauses, fmt.Sprintf("%s=$%d", orgCol, len(*args)))
		}
	case scope.TeamScoped:
		// An ADMIN narrowing by team alone carries no organization id.
		if s.OrganizationID != "" && orgCol != "" {
			*args = append(*args, s.OrganizationID)
			*clauses = append(*clauses, fmt.Sprintf("%s=$%d", orgCol, len(*args)))
		}
		if teamCol != "" {
			if len(s.TeamIDs) == 0 {
				// Zero managed teams: only the organization's team-less records.
				*clauses = append(*clauses, fmt.Sprintf("%s IS NULL", teamCol))
			} else {
				*args = append(*args, s.TeamIDs)
				*clauses = append(*clauses, fmt.Sprintf("%s = ANY($%d)", teamCol, len(*args)))
			}
		}
	case scope.SelfScoped:
		if orgCol != "" {
			*args = append(*args, s.OrganizationID)
			*clauses = append(*clauses, fmt.Sprintf("%s=$%d", orgCol, len(*args)))
		}
		if empCol != "" {
			*args = append(*args, s.EmployeeID)
			*clauses = append(*clauses, fmt.Sprintf("%s=$%d", empCol, len(*args)))
		}
	}

	// Explicit employee narrowing already validated by the resolver.
	if s.Kind != scope.SelfScoped && s.EmployeeID != "" && empCol != "" {
		*args = append(*args, s.EmployeeID)
		*clauses = append(*clauses, fmt.Sprintf("%s=$%d", empCol, len(*args)))
	}
}
