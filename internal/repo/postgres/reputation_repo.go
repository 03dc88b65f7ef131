package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReputationRepo struct {
	pool *pgxpool.Pool
}

func NewReputationRepo(pool *pgxpool.Pool) *ReputationRepo {
	return &ReputationRepo{pool: pool}
}

// IncrementGracefulClosures bumps the per-user counter atomically in SQL.
// Concurrent closures by the same user on different devices must not lose
// increments, so this is never read-modify-write in the application.
func (r *ReputationRepo) IncrementGracefulClosures(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var count int64
	err := tx.QueryRow(ctx, `
INSERT INTO reputation_counters (
	user_id,
	graceful_closures,
	updated_at
) VALUES ($1, 1, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	graceful_closures = reputation_counters.graceful_closures + 1,
	updated_at = NOW()
RETURNING graceful_closures
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment graceful closures: %w", err)
	}

	return count, nil
}

func (r *ReputationRepo) GetGracefulClosures(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT graceful_closures
FROM reputation_counters
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get graceful closures: %w", err)
	}

	return count, nil
}
