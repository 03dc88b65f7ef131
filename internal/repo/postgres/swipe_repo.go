package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID        int64
	ActorID   string
	TargetID  string
	Direction string
	CreatedAt time.Time
}

// AppendLog records the swipe in the append-only audit log. The log keeps
// every action even when a later swipe supersedes it for ranking.
func (r *SwipeRepo) AppendLog(ctx context.Context, tx pgx.Tx, actorID, targetID, direction string, now time.Time) (SwipeRecord, error) {
	if actorID == "" || targetID == "" || direction == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_id,
	target_id,
	direction,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, actor_id, target_id, direction, created_at
`, actorID, targetID, direction, now.UTC()).Scan(
		&rec.ID,
		&rec.ActorID,
		&rec.TargetID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("append swipe log: %w", err)
	}

	return rec, nil
}

// UpsertState sets the single-valued current direction for (actor, target).
// Re-issuing the same direction is a no-op; switching overwrites.
func (r *SwipeRepo) UpsertState(ctx context.Context, tx pgx.Tx, actorID, targetID, direction string, now time.Time) error {
	if actorID == "" || targetID == "" || direction == "" {
		return fmt.Errorf("invalid swipe state payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO swipe_state (
	actor_id,
	target_id,
	direction,
	updated_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_id, target_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	updated_at = EXCLUDED.updated_at
`, actorID, targetID, direction, now.UTC()); err != nil {
		return fmt.Errorf("upsert swipe state: %w", err)
	}

	return nil
}

// LikeExists reports whether actor currently likes target. Used both for the
// reciprocal-like check and the compatibility authorization gate.
func (r *SwipeRepo) LikeExists(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == "" || targetID == "" {
		return false, fmt.Errorf("invalid like lookup")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM swipe_state
WHERE actor_id = $1 AND target_id = $2 AND direction = 'like'
LIMIT 1
`, actorID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

// ListSwipedTargetIDs returns every target the actor has ever swiped on,
// regardless of direction. Discovery excludes all of them.
func (r *SwipeRepo) ListSwipedTargetIDs(ctx context.Context, actorID string) ([]string, error) {
	if actorID == "" {
		return nil, fmt.Errorf("invalid actor id")
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_id
FROM swipe_state
WHERE actor_id = $1
`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list swiped targets: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 64)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped target: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swiped targets: %w", rows.Err())
	}

	return ids, nil
}
