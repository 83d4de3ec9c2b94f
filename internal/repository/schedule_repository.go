package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-planner/internal/domain"
	"github.com/spec-kit/workforce-planner/internal/scope"
)

// ErrVersionConflict signals a lost optimistic-concurrency race on a schedule
// record; the caller re-reads and retries the merge.
var ErrVersionConflict = errors.New("schedule record version conflict")

// ErrDuplicateWeek signals that a record for the natural key already exists;
// the caller re-reads and merges into it.
var ErrDuplicateWeek = errors.New("schedule record already exists for week")

// ScheduleRepository persists the shared per-team per-week schedule records.
// (organization, team, week_start, week_end) is the natural key.
type ScheduleRepository interface {
	Insert(ctx context.Context, rec *domain.ScheduleRecord) error
	UpdateDays(ctx context.Context, rec *domain.ScheduleRecord) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleRecord, error)
	GetByWeek(ctx context.Context, organizationID, teamID string, weekStart time.Time) (*domain.ScheduleRecord, error)
	ListWithScope(ctx context.Context, s scope.Scope, weekStart *time.Time) ([]domain.ScheduleRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) error
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository constructs repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

const scheduleColumns = `id, organization_id, team_id, week_start, week_end, days, version, created_at, updated_at`

func (r *scheduleRepository) Insert(ctx context.Context, rec *domain.ScheduleRecord) error {
	const query = `
        INSERT INTO schedule_records (organization_id, team_id, week_start, week_end, days, version)
        VALUES ($1,$2,$3,$4,$5,1)
        ON CONFLICT (organization_id, team_id, week_start) DO NOTHING
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.OrganizationID,
		rec.TeamID,
		rec.WeekStart,
		rec.WeekEnd,
		rec.Days,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateWeek
	}
	if err != nil {
		return err
	}
	rec.Version = 1
	return nil
}

// UpdateDays rewrites the per-day mapping only when the caller still holds
// the current version, then bumps it.
func (r *scheduleRepository) UpdateDays(ctx context.Context, rec *domain.ScheduleRecord) error {
	const query = `
        UPDATE schedule_records SET days=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND version=$3`
	cmd, err := r.pool.Exec(ctx, query, rec.Days, rec.ID, rec.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	rec.Version++
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_records WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *scheduleRepository) GetByWeek(ctx context.Context, organizationID, teamID string, weekStart time.Time) (*domain.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + `
        FROM schedule_records WHERE organization_id=$1 AND team_id=$2 AND week_start=$3`
	var rec domain.ScheduleRecord
	if err := r.pool.QueryRow(ctx, query, organizationID, teamID, weekStart).Scan(
		&rec.ID,
		&rec.OrganizationID,
		&rec.TeamID,
		&rec.WeekStart,
		&rec.WeekEnd,
		&rec.Days,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *scheduleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ScheduleRecord, error) {
	var rec domain.ScheduleRecord
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&rec.ID,
		&rec.OrganizationID,
		&rec.TeamID,
		&rec.WeekStart,
		&rec.WeekEnd,
		&rec.Days,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *scheduleRepository) ListWithScope(ctx context.Context, s scope.Scope, weekStart *time.Time) ([]domain.ScheduleRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	// Self-scoped visibility on shared records is enforced during the
	// per-employee expansion; at the store level the employee predicate
	// does not apply to team-shared rows.
	appendScopeClauses(s, &clauses, &args, "organization_id", "team_id", "")
	if weekStart != nil {
		args = append(args, *weekStart)
		clauses = append(clauses, fmt.Sprintf("week_start=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM schedule_records WHERE %s ORDER BY week_start DESC`,
		scheduleColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ScheduleRecord
	for rows.Next() {
		var rec domain.ScheduleRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.OrganizationID,
			&rec.TeamID,
			&rec.WeekStart,
			&rec.WeekEnd,
			&rec.Days,
			&rec.Version,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedule_records WHERE id=$1`, id)
	return err
}

func (r *scheduleRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedule_records WHERE team_id=$1`, teamID)
	return err
}

func (r *scheduleRepository) DeleteByOrganization(ctx context.Context, organizationID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedule_records WHERE organization_id=$1`, organizationID)
	return err
}
