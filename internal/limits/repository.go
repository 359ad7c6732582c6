package limits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predmarket/platform/internal/database"
)

const profileColumns = `user_id, daily_limit, weekly_limit, monthly_limit,
	daily_used, weekly_used, monthly_used,
	daily_reset_at, weekly_reset_at, monthly_reset_at,
	created_at, updated_at`

// Repository handles deposit_limits PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new limits Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOrCreate returns the user's profile, creating one with zeroed counters
// and markers at starts if it doesn't exist.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID, starts Starts) (*Profile, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO deposit_limits (user_id, daily_reset_at, weekly_reset_at, monthly_reset_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, starts.Daily, starts.Weekly, starts.Monthly)
	if err != nil {
		return nil, fmt.Errorf("%w: ensuring deposit limits: %w", database.ErrStorage, err)
	}

	return r.get(ctx, userID)
}

// ResetWindows zeroes every window whose marker precedes its start and
// advances the marker. Windows already inside their current period are left
// alone, so a concurrent AddUsage is never overwritten.
func (r *Repository) ResetWindows(ctx context.Context, userID uuid.UUID, starts Starts) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE deposit_limits SET
		     daily_used = CASE WHEN daily_reset_at < $2 THEN 0 ELSE daily_used END,
		     daily_reset_at = GREATEST(daily_reset_at, $2),
		     weekly_used = CASE WHEN weekly_reset_at < $3 THEN 0 ELSE weekly_used END,
		     weekly_reset_at = GREATEST(weekly_reset_at, $3),
		     monthly_used = CASE WHEN monthly_reset_at < $4 THEN 0 ELSE monthly_used END,
		     monthly_reset_at = GREATEST(monthly_reset_at, $4),
		     updated_at = NOW()
		 WHERE user_id = $1
		   AND (daily_reset_at < $2 OR weekly_reset_at < $3 OR monthly_reset_at < $4)
		 RETURNING `+profileColumns,
		userID, starts.Daily, starts.Weekly, starts.Monthly)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Another request already rolled the windows over.
		return r.get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resetting deposit limit windows: %w", database.ErrStorage, err)
	}
	return p, nil
}

// AddUsage accumulates amount into all three windows in a single statement,
// creating the profile when absent. A window whose marker precedes its start
// is seeded with amount.
func (r *Repository) AddUsage(ctx context.Context, userID uuid.UUID, amount float64, starts Starts) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO deposit_limits AS dl (user_id, daily_used, weekly_used, monthly_used,
		                                   daily_reset_at, weekly_reset_at, monthly_reset_at)
		 VALUES ($1, $2, $2, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		     daily_used = CASE WHEN dl.daily_reset_at < EXCLUDED.daily_reset_at
		                       THEN EXCLUDED.daily_used ELSE dl.daily_used + EXCLUDED.daily_used END,
		     daily_reset_at = GREATEST(dl.daily_reset_at, EXCLUDED.daily_reset_at),
		     weekly_used = CASE WHEN dl.weekly_reset_at < EXCLUDED.weekly_reset_at
		                        THEN EXCLUDED.weekly_used ELSE dl.weekly_used + EXCLUDED.weekly_used END,
		     weekly_reset_at = GREATEST(dl.weekly_reset_at, EXCLUDED.weekly_reset_at),
		     monthly_used = CASE WHEN dl.monthly_reset_at < EXCLUDED.monthly_reset_at
		                         THEN EXCLUDED.monthly_used ELSE dl.monthly_used + EXCLUDED.monthly_used END,
		     monthly_reset_at = GREATEST(dl.monthly_reset_at, EXCLUDED.monthly_reset_at),
		     updated_at = NOW()
		 RETURNING `+profileColumns,
		userID, amount, starts.Daily, starts.Weekly, starts.Monthly)

	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%w: recording deposit usage: %w", database.ErrStorage, err)
	}
	return p, nil
}

// UpsertLimits replaces the provided ceilings, creating the profile when
// absent. Used counters and reset markers are never touched.
func (r *Repository) UpsertLimits(ctx context.Context, userID uuid.UUID, update LimitUpdate, starts Starts) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO deposit_limits AS dl (user_id, daily_limit, weekly_limit, monthly_limit,
		                                   daily_reset_at, weekly_reset_at, monthly_reset_at)
		 VALUES ($1, $2::double precision, $3::double precision, $4::double precision, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     daily_limit = COALESCE($2::double precision, dl.daily_limit),
		     weekly_limit = COALESCE($3::double precision, dl.weekly_limit),
		     monthly_limit = COALESCE($4::double precision, dl.monthly_limit),
		     updated_at = NOW()
		 RETURNING `+profileColumns,
		userID, update.Daily, update.Weekly, update.Monthly, starts.Daily, starts.Weekly, starts.Monthly)

	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%w: upserting deposit limits: %w", database.ErrStorage, err)
	}
	return p, nil
}

func (r *Repository) get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM deposit_limits WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching deposit limits: %w", database.ErrStorage, err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Daily, &p.Weekly, &p.Monthly,
		&p.DailyUsed, &p.WeeklyUsed, &p.MonthlyUsed,
		&p.DailyResetAt, &p.WeeklyResetAt, &p.MonthlyResetAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
