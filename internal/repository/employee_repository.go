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

// EmployeeRepository manages employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByAccount(ctx context.Context, accountID string) (*domain.Employee, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Employee, error)
	ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Employee, error)
	DetachTeam(ctx context.Context, teamID string) error
	Delete(ctx context.Context, id string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository constructs repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, organization_id, team_id, account_id, name, status, created_at, updated_at`

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (organization_id, team_id, account_id, name, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		emp.OrganizationID,
		emp.TeamID,
		emp.AccountID,
		emp.Name,
		emp.Status,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees SET team_id=$1, account_id=$2, name=$3, status=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		emp.TeamID,
		emp.AccountID,
		emp.Name,
		emp.Status,
		emp.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id=$1`, employeeColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *employeeRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE account_id=$1`, employeeColumns)
	return r.fetchSingle(ctx, query, accountID)
}

func (r *employeeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Employee, error) {
	var emp domain.Employee
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&emp.ID,
		&emp.OrganizationID,
		&emp.TeamID,
		&emp.AccountID,
		&emp.Name,
		&emp.Status,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE team_id=$1`, employeeColumns)
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *employeeRepository) ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Employee, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "id")

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY name`,
		employeeColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmployees(rows)
}

// DetachTeam clears the team reference on every member. Running it again for
// the same team is a no-op.
func (r *employeeRepository) DetachTeam(ctx context.Context, teamID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE employees SET team_id=NULL, updated_at=NOW() WHERE team_id=$1`, teamID)
	return err
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	return err
}

func (r *employeeRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE organization_id=$1`, organizationID)
	return err
}

func scanEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	var result []domain.Employee
	for rows.Next() {
		var emp domain.Employee
		if err := rows.Scan(
			&emp.ID,
			&emp.OrganizationID,
			&emp.TeamID,
			&emp.AccountID,
			&emp.Name,
			&emp.Status,
			&emp.CreatedAt,
			&emp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}
