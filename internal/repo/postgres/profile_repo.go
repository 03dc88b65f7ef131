package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.Profile, error) {
	if userID == "" {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	COALESCE(display_name, ''),
	COALESCE(bio, ''),
	COALESCE(age, 0),
	COALESCE(gender, ''),
	lat,
	lon,
	COALESCE(drinking, ''),
	COALESCE(smoking, ''),
	COALESCE(exercise, ''),
	COALESCE(religion, ''),
	COALESCE(education, ''),
	COALESCE(relationship_goal, ''),
	COALESCE(interests, '{}'),
	COALESCE(verified, FALSE),
	COALESCE(photo_key, ''),
	last_active_at,
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Bio,
		&p.Age,
		&p.Gender,
		&p.Lat,
		&p.Lon,
		&p.Drinking,
		&p.Smoking,
		&p.Exercise,
		&p.Religion,
		&p.Education,
		&p.RelationshipGoal,
		&p.Interests,
		&p.Verified,
		&p.PhotoKey,
		&p.LastActiveAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}
