package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists per-user generation counters. Every mutation is a single
// conditional statement so concurrent requests never race on read-modify-write.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*UserQuotaState, error)
	// ResetIfBefore zeroes the counter when last_reset precedes monthStart.
	// It reports whether a reset happened.
	ResetIfBefore(ctx context.Context, userID uuid.UUID, monthStart, now time.Time) (bool, error)
	// IncrementIfBelow adds one generation unless the counter already reached
	// limit. It reports whether the increment happened.
	IncrementIfBelow(ctx context.Context, userID uuid.UUID, limit int) (bool, error)
	// DecrementIfResetBefore removes one generation, never going below zero,
	// unless the counter was reset at or after cutoff. It reports whether the
	// decrement happened.
	DecrementIfResetBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (bool, error)
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Store over the users table.
func NewRepository(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (r *postgresStore) Get(ctx context.Context, userID uuid.UUID) (*UserQuotaState, error) {
	var s UserQuotaState
	err := r.pool.QueryRow(ctx,
		`SELECT id, generations_used, last_reset FROM users WHERE id = $1`, userID,
	).Scan(&s.UserID, &s.GenerationsUsed, &s.LastReset)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching quota state: %w", err)
	}
	return &s, nil
}

func (r *postgresStore) ResetIfBefore(ctx context.Context, userID uuid.UUID, monthStart, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET generations_used = 0,
		     last_reset = $3,
		     updated_at = NOW()
		 WHERE id = $1 AND last_reset < $2`, userID, monthStart, now)
	if err != nil {
		return false, fmt.Errorf("resetting monthly quota: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresStore) IncrementIfBelow(ctx context.Context, userID uuid.UUID, limit int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET generations_used = generations_used + 1,
		     updated_at = NOW()
		 WHERE id = $1 AND generations_used < $2`, userID, limit)
	if err != nil {
		return false, fmt.Errorf("incrementing generations: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresStore) DecrementIfResetBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET generations_used = GREATEST(generations_used - 1, 0),
		     updated_at = NOW()
		 WHERE id = $1 AND last_reset < $2`, userID, cutoff)
	if err != nil {
		return false, fmt.Errorf("decrementing generations: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
