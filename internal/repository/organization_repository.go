package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// OrganizationRepository manages tenant root persistence.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
	Delete(ctx context.Context, id string) error
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, plan_tier)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		org.Name,
		org.PlanTier,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	const query = `
        UPDATE organizations SET name=$1, plan_tier=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, org.Name, org.PlanTier, org.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, plan_tier, created_at, updated_at
        FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.PlanTier,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, plan_tier, created_at, updated_at
        FROM organizations ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.PlanTier, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	return result, rows.Err()
}

func (r *organizationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id=$1`, id)
	return err
}
