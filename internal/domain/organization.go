package domain

import "time"

// PlanTier enumerates subscription plans for tenant organizations.
type PlanTier string

const (
	PlanTierFree       PlanTier = "FREE"
	PlanTierStandard   PlanTier = "STANDARD"
	PlanTierPremium    PlanTier = "PREMIUM"
	PlanTierEnterprise PlanTier = "ENTERPRISE"
)

// Organization is the tenant root. Every team, employee, schedule record,
// leave request, task and incident belongs to exactly one organization.
type Organization struct {
	ID        string
	Name      string
	PlanTier  PlanTier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription is the billing record scoped to an organization.
type Subscription struct {
	ID             string
	OrganizationID string
	PlanTier       PlanTier
	Status         string
	PeriodEnd      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
