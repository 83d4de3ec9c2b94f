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

// LeaveRepository manages leave request persistence.
type LeaveRepository interface {
	Create(ctx context.Context, leave *domain.LeaveRequest) error
	Update(ctx context.Context, leave *domain.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	ListWithScope(ctx context.Context, s scope.Scope) ([]domain.LeaveRequest, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
	DeleteByEmployees(ctx context.Context, employeeIDs []string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository constructs repository.
func NewLeaveRepository(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepository{pool: pool}
}

const leaveColumns = `id, organization_id, team_id, employee_id, leave_type, start_date, end_date, status, reason, created_at, updated_at`

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	const query = `
        INSERT INTO leave_requests (organization_id, team_id, employee_id, leave_type, start_date, end_date, status, reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		leave.OrganizationID,
		leave.TeamID,
		leave.EmployeeID,
		leave.Type,
		leave.StartDate,
		leave.EndDate,
		leave.Status,
		leave.Reason,
	).Scan(&leave.ID, &leave.CreatedAt, &leave.UpdatedAt)
}

func (r *leaveRepository) Update(ctx context.Context, leave *domain.LeaveRequest) error {
	const query = `
        UPDATE leave_requests SET leave_type=$1, start_date=$2, end_date=$3, status=$4, reason=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		leave.Type,
		leave.StartDate,
		leave.EndDate,
		leave.Status,
		leave.Reason,
		leave.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id=$1`
	var leave domain.LeaveRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&leave.ID,
		&leave.OrganizationID,
		&leave.TeamID,
		&leave.EmployeeID,
		&leave.Type,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Status,
		&leave.Reason,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepository) ListWithScope(ctx context.Context, s scope.Scope) ([]domain.LeaveRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "employee_id")

	query := fmt.Sprintf(`SELECT %s FROM leave_requests WHERE %s ORDER BY start_date DESC`,
		leaveColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeaveRequest
	for rows.Next() {
		var leave domain.LeaveRequest
		if err := rows.Scan(
			&leave.ID,
			&leave.OrganizationID,
			&leave.TeamID,
			&leave.EmployeeID,
			&leave.Type,
			&leave.StartDate,
			&leave.EndDate,
			&leave.Status,
			&leave.Reason,
			&leave.CreatedAt,
			&leave.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, leave)
	}
	return result, rows.Err()
}

func (r *leaveRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE employee_id=$1`, employeeID)
	return err
}

func (r *leaveRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE employee_id = ANY($1)`, employeeIDs)
	return err
}

func (r *leaveRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE organization_id=$1`, organizationID)
	return err
}
