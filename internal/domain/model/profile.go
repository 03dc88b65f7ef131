package model

import "time"

// Profile holds a user's public card plus the private true coordinates.
// True coordinates never leave the server boundary; display consumers only
// ever see fuzzed coordinates.
type Profile struct {
	UserID           string     `json:"user_id"`
	DisplayName      string     `json:"display_name"`
	Bio              string     `json:"bio"`
	Age              int        `json:"age"`
	Gender           string     `json:"gender"`
	Lat              *float64   `json:"-"`
	Lon              *float64   `json:"-"`
	Drinking         string     `json:"drinking"`
	Smoking          string     `json:"smoking"`
	Exercise         string     `json:"exercise"`
	Religion         string     `json:"religion"`
	Education        string     `json:"education"`
	RelationshipGoal string     `json:"relationship_goal"`
	Interests        []string   `json:"interests"`
	Verified         bool       `json:"verified"`
	PhotoKey         string     `json:"-"`
	LastActiveAt     *time.Time `json:"last_active_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p Profile) Complete() bool {
	return p.Bio != ""
}

func (p Profile) HasCoordinates() bool {
	return p.Lat != nil && p.Lon != nil
}
