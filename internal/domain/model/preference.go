package model

import "time"

// Preference is single-valued per user and upserted as a whole.
type Preference struct {
	UserID           string    `json:"user_id"`
	AgeMin           int       `json:"age_min"`
	AgeMax           int       `json:"age_max"`
	MaxDistanceMiles float64   `json:"max_distance_miles"`
	InterestedIn     []string  `json:"interested_in"`
	UpdatedAt        time.Time `json:"updated_at"`
}
