package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-planner/internal/domain"
)

// AccountRepository manages login account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	RemoveTeamFromAll(ctx context.Context, teamID string) error
	DetachEmployee(ctx context.Context, employeeID string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository constructs repository.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, role, organization_id, employee_id, team_ids, status, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash, role, organization_id, employee_id, team_ids, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.OrganizationID,
		account.EmployeeID,
		account.TeamIDs,
		account.Status,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, email=$2, password_hash=$3, role=$4, organization_id=$5,
            employee_id=$6, team_ids=$7, status=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.OrganizationID,
		account.EmployeeID,
		account.TeamIDs,
		account.Status,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.OrganizationID,
		&account.EmployeeID,
		&account.TeamIDs,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

// RemoveTeamFromAll drops the team from every account's team-membership set.
func (r *accountRepository) RemoveTeamFromAll(ctx context.Context, teamID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET team_ids = array_remove(team_ids, $1), updated_at=NOW()
         WHERE $1 = ANY(team_ids)`, teamID)
	return err
}

// DetachEmployee clears the self-service link on whichever account points at
// the employee.
func (r *accountRepository) DetachEmployee(ctx context.Context, employeeID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET employee_id=NULL, updated_at=NOW() WHERE employee_id=$1`, employeeID)
	return err
}

func (r *accountRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE organization_id=$1`, organizationID)
	return err
}
