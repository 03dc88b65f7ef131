package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/model"
	"github.com/amora-app/backend/internal/domain/rules"
)

var ErrScoreNotFound = errors.New("compatibility score not found")

type ScoreRepo struct {
	pool *pgxpool.Pool
}

func NewScoreRepo(pool *pgxpool.Pool) *ScoreRepo {
	return &ScoreRepo{pool: pool}
}

// Upsert persists the score keyed by canonical pair. Recomputation is
// idempotent: the latest computation wins, breakdown included.
func (r *ScoreRepo) Upsert(ctx context.Context, score model.CompatibilityScore) error {
	if score.UserAID == "" || score.UserBID == "" {
		return fmt.Errorf("invalid score payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	userA, userB := rules.CanonicalPair(score.UserAID, score.UserBID)
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal score breakdown: %w", err)
	}
	computedAt := score.ComputedAt
	if computedAt.IsZero() {
		computedAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO compatibility_scores (
	user_a_id,
	user_b_id,
	score,
	breakdown,
	computed_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET
	score = EXCLUDED.score,
	breakdown = EXCLUDED.breakdown,
	computed_at = EXCLUDED.computed_at
`, userA, userB, score.Score, breakdown, computedAt.UTC()); err != nil {
		return fmt.Errorf("upsert compatibility score: %w", err)
	}

	return nil
}

func (r *ScoreRepo) GetByPair(ctx context.Context, userID, targetID string) (model.CompatibilityScore, error) {
	if userID == "" || targetID == "" {
		return model.CompatibilityScore{}, fmt.Errorf("invalid score lookup")
	}
	if r.pool == nil {
		return model.CompatibilityScore{}, ErrScoreNotFound
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var score model.CompatibilityScore
	var breakdown []byte
	err := r.pool.QueryRow(ctx, `
SELECT user_a_id, user_b_id, score, breakdown, computed_at
FROM compatibility_scores
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(
		&score.UserAID,
		&score.UserBID,
		&score.Score,
		&breakdown,
		&score.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CompatibilityScore{}, ErrScoreNotFound
		}
		return model.CompatibilityScore{}, fmt.Errorf("get compatibility score: %w", err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &score.Breakdown); err != nil {
			return model.CompatibilityScore{}, fmt.Errorf("unmarshal score breakdown: %w", err)
		}
	}

	return score, nil
}
