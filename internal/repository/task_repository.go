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

// TaskRepository manages task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Task, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
	DeleteByEmployees(ctx context.Context, employeeIDs []string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, organization_id, team_id, employee_id, title, description, status, due_date, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (organization_id, team_id, employee_id, title, description, status, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.OrganizationID,
		task.TeamID,
		task.EmployeeID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, status=$3, due_date=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.OrganizationID,
		&task.TeamID,
		&task.EmployeeID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "employee_id")

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC`,
		taskColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.OrganizationID,
			&task.TeamID,
			&task.EmployeeID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE employee_id=$1`, employeeID)
	return err
}

func (r *taskRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE employee_id = ANY($1)`, employeeIDs)
	return err
}

func (r *taskRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE organization_id=$1`, organizationID)
	return err
}
