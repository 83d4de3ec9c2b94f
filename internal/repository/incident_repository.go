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

// IncidentRepository manages incident report persistence.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Update(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Incident, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
	DeleteByEmployees(ctx context.Context, employeeIDs []string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository constructs repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `id, organization_id, team_id, employee_id, title, description, severity, status, occurred_at, created_at, updated_at`

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const query = `
        INSERT INTO incidents (organization_id, team_id, employee_id, title, description, severity, status, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		incident.OrganizationID,
		incident.TeamID,
		incident.EmployeeID,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.OccurredAt,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	const query = `
        UPDATE incidents SET title=$1, description=$2, severity=$3, status=$4, occurred_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.OccurredAt,
		incident.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id=$1`
	var incident domain.Incident
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&incident.ID,
		&incident.OrganizationID,
		&incident.TeamID,
		&incident.EmployeeID,
		&incident.Title,
		&incident.Description,
		&incident.Severity,
		&incident.Status,
		&incident.OccurredAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepository) ListWithScope(ctx context.Context, s scope.Scope) ([]domain.Incident, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "employee_id")

	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s ORDER BY occurred_at DESC`,
		incidentColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := rows.Scan(
			&incident.ID,
			&incident.OrganizationID,
			&incident.TeamID,
			&incident.EmployeeID,
			&incident.Title,
			&incident.Description,
			&incident.Severity,
			&incident.Status,
			&incident.OccurredAt,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, incident)
	}
	return result, rows.Err()
}

func (r *incidentRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE employee_id=$1`, employeeID)
	return err
}

func (r *incidentRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE employee_id = ANY($1)`, employeeIDs)
	return err
}

func (r *incidentRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE organization_id=$1`, organizationID)
	return err
}
