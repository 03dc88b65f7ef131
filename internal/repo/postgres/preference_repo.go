package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/model"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

func (r *PreferenceRepo) Get(ctx context.Context, userID string) (model.Preference, error) {
	if userID == "" {
		return model.Preference{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Preference{}, ErrPreferenceNotFound
	}

	var pref model.Preference
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	age_min,
	age_max,
	max_distance_miles,
	COALESCE(interested_in, '{}'),
	updated_at
FROM preferences
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&pref.UserID,
		&pref.AgeMin,
		&pref.AgeMax,
		&pref.MaxDistanceMiles,
		&pref.InterestedIn,
		&pref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, ErrPreferenceNotFound
		}
		return model.Preference{}, fmt.Errorf("get preference: %w", err)
	}

	return pref, nil
}

func (r *PreferenceRepo) Upsert(ctx context.Context, pref model.Preference) error {
	if pref.UserID == "" {
		return fmt.Errorf("invalid preference payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO preferences (
	user_id,
	age_min,
	age_max,
	max_distance_miles,
	interested_in,
	updated_at
) VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	age_min = EXCLUDED.age_min,
	age_max = EXCLUDED.age_max,
	max_distance_miles = EXCLUDED.max_distance_miles,
	interested_in = EXCLUDED.interested_in,
	updated_at = NOW()
`, pref.UserID, pref.AgeMin, pref.AgeMax, pref.MaxDistanceMiles, pref.InterestedIn); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}

	return nil
}
