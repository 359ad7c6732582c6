package cooloff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predmarket/platform/internal/database"
)

const uniqueViolation = "23505"

const timeOutColumns = `id, user_id, start_at, end_at, duration_days, reason, is_active, cancelled_at, created_at, updated_at`

type Repository interface {
	// DeactivateExpired closes active time-outs that ended at or before now.
	DeactivateExpired(ctx context.Context, userID uuid.UUID, now time.Time) error
	// Create returns ErrAlreadyActive when the user has an active time-out.
	Create(ctx context.Context, t *TimeOut) error
	// Active returns database.ErrNotFound when no time-out is running at now.
	Active(ctx context.Context, userID uuid.UUID, now time.Time) (*TimeOut, error)
	// Cancel returns database.ErrNotFound when no time-out is running at now.
	Cancel(ctx context.Context, userID uuid.UUID, now time.Time) (*TimeOut, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) DeactivateExpired(ctx context.Context, userID uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE time_outs SET is_active = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND is_active AND end_at <= $2`, userID, now)
	if err != nil {
		return fmt.Errorf("%w: deactivating expired time-outs: %w", database.ErrStorage, err)
	}
	return nil
}

func (r *postgresRepository) Create(ctx context.Context, t *TimeOut) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO time_outs (id, user_id, start_at, end_at, duration_days, reason, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)`,
		t.ID, t.UserID, t.StartAt, t.EndAt, t.DurationDays, t.Reason, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyActive
		}
		return fmt.Errorf("%w: inserting time-out: %w", database.ErrStorage, err)
	}
	return nil
}

func (r *postgresRepository) Active(ctx context.Context, userID uuid.UUID, now time.Time) (*TimeOut, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+timeOutColumns+` FROM time_outs
		 WHERE user_id = $1 AND is_active AND end_at > $2`, userID, now)

	t, err := scanTimeOut(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("%w: querying active time-out: %w", database.ErrStorage, err)
	}
	return t, nil
}

func (r *postgresRepository) Cancel(ctx context.Context, userID uuid.UUID, now time.Time) (*TimeOut, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE time_outs SET is_active = FALSE, cancelled_at = $2, updated_at = NOW()
		 WHERE user_id = $1 AND is_active AND end_at > $2
		 RETURNING `+timeOutColumns, userID, now)

	t, err := scanTimeOut(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("%w: cancelling time-out: %w", database.ErrStorage, err)
	}
	return t, nil
}

func scanTimeOut(row pgx.Row) (*TimeOut, error) {
	t := &TimeOut{}
	err := row.Scan(&t.ID, &t.UserID, &t.StartAt, &t.EndAt, &t.DurationDays, &t.Reason,
		&t.IsActive, &t.CancelledAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
