package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DiscoveryRepo struct {
	pool *pgxpool.Pool
}

func NewDiscoveryRepo(pool *pgxpool.Pool) *DiscoveryRepo {
	return &DiscoveryRepo{pool: pool}
}

// CandidateRecord is a discoverable profile annotated with the externally
// computed visibility score. The score is opaque here: higher sorts first,
// nothing else about it is interpreted.
type CandidateRecord struct {
	UserID           string
	DisplayName      string
	Bio              string
	Age              int
	Gender           string
	Lat              *float64
	Lon              *float64
	RelationshipGoal string
	Interests        []string
	Verified         bool
	PhotoKey         string
	VisibilityScore  float64
	LastActiveAt     *time.Time
}

// ListDiscoverable returns candidates visible to the requester. Incomplete
// profiles (no bio) and the requester's own row are excluded here; swipe
// exclusions and preference filters are applied by the discovery service.
func (r *DiscoveryRepo) ListDiscoverable(ctx context.Context, requesterID string, limit int) ([]CandidateRecord, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("invalid requester id")
	}
	if limit <= 0 {
		limit = 500
	}
	if r.pool == nil {
		return []CandidateRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	COALESCE(p.display_name, ''),
	p.bio,
	COALESCE(p.age, 0),
	COALESCE(p.gender, ''),
	p.lat,
	p.lon,
	COALESCE(p.relationship_goal, ''),
	COALESCE(p.interests, '{}'),
	COALESCE(p.verified, FALSE),
	COALESCE(p.photo_key, ''),
	COALESCE(p.visibility_score, 0),
	p.last_active_at
FROM profiles p
WHERE
	p.user_id <> $1
	AND p.bio IS NOT NULL
	AND p.bio <> ''
ORDER BY COALESCE(p.visibility_score, 0) DESC, p.user_id ASC
LIMIT $2
`, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list discoverable profiles: %w", err)
	}
	defer rows.Close()

	items := make([]CandidateRecord, 0, limit)
	for rows.Next() {
		var rec CandidateRecord
		if err := rows.Scan(
			&rec.UserID,
			&rec.DisplayName,
			&rec.Bio,
			&rec.Age,
			&rec.Gender,
			&rec.Lat,
			&rec.Lon,
			&rec.RelationshipGoal,
			&rec.Interests,
			&rec.Verified,
			&rec.PhotoKey,
			&rec.VisibilityScore,
			&rec.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan discoverable profile: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate discoverable profiles: %w", rows.Err())
	}

	return items, nil
}
