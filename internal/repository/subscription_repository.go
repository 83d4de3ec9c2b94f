package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// SubscriptionRepository manages billing records scoped to organizations.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Subscription, error)
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository constructs repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (organization_id, plan_tier, status, period_end)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		sub.OrganizationID,
		sub.PlanTier,
		sub.Status,
		sub.PeriodEnd,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *subscriptionRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Subscription, error) {
	const query = `
        SELECT id, organization_id, plan_tier, status, period_end, created_at, updated_at
        FROM subscriptions WHERE organization_id=$1`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.OrganizationID, &sub.PlanTier, &sub.Status, &sub.PeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func (r *subscriptionRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE organization_id=$1`, organizationID)
	return err
}
