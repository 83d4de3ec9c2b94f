package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/scope"
)

// TeamRepository manages persistence for teams. Member IDs are derived from
// the employees table rather than stored, so team membership has a single
// source of truth.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error)
	ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Team, error)
	Delete(ctx context.Context, id string) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (organization_id, name, manager_ids)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.OrganizationID,
		team.Name,
		team.ManagerIDs,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, manager_ids=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, team.Name, team.ManagerIDs, team.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, organization_id, name, manager_ids, created_at, updated_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.OrganizationID,
		&team.Name,
		&team.ManagerIDs,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Team, error) {
	const query = `
        SELECT id, organization_id, name, manager_ids, created_at, updated_at
        FROM teams WHERE organization_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepository) ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Team, error) {
	base := `SELECT id, organization_id, name, manager_ids, created_at, updated_at FROM teams`
	clauses := []string{"1=1"}
	args := []any{}
	appendScopeClauses(s, &clauses, &args, "organization_id", "id", "")

	query := fmt.Sprintf("%s WHERE %s ORDER BY name", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	return err
}

func (r *teamRepository) loadMembers(ctx context.Context, team *domain.Team) error {
	rows, err := r.pool.Query(ctx, `SELECT id FROM employees WHERE team_id=$1`, team.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		team.MemberIDs = append(team.MemberIDs, id)
	}
	return rows.Err()
}

func scanTeams(rows pgx.Rows) ([]domain.Team, error) {
	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.OrganizationID, &team.Name, &team.ManagerIDs, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
