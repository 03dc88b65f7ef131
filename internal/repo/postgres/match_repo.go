package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/rules"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID        int64
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

// CreateIfMutualLike inserts a match when the reciprocal like already exists.
// Concurrent reciprocal swipes both reach the INSERT; the unique constraint
// on (user_a_id, user_b_id) plus ON CONFLICT DO NOTHING guarantees at most
// one row, and the loser observes the conflict as "already matched", which
// is success rather than an error.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, actorID, targetID string) (bool, error) {
	if actorID == "" || targetID == "" {
		return false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipe_state
WHERE actor_id = $1 AND target_id = $2 AND direction = 'like'
LIMIT 1
`, targetID, actorID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA, userB := rules.CanonicalPair(actorID, targetID)

	var matchID int64
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create match: %w", err)
	}

	return matchID > 0, nil
}

func (r *MatchRepo) GetByPair(ctx context.Context, userID, targetID string) (MatchRecord, error) {
	if userID == "" || targetID == "" {
		return MatchRecord{}, fmt.Errorf("invalid match lookup")
	}
	if r.pool == nil {
		return MatchRecord{}, ErrMatchNotFound
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by pair: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID string, limit int) ([]MatchRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 OR user_b_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.ID, &rec.UserAID, &rec.UserBID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
