package model

import "time"

// FactorScore is one normalized component of a compatibility score. Factors
// with missing inputs are recorded as unavailable and excluded from the
// weighted sum on both sides of the division.
type FactorScore struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// CompatibilityScore is keyed by the canonical pair and recomputed
// idempotently; the breakdown is kept for explainability.
type CompatibilityScore struct {
	UserAID    string        `json:"user_a_id"`
	UserBID    string        `json:"user_b_id"`
	Score      float64       `json:"score"`
	Breakdown  []FactorScore `json:"breakdown"`
	ComputedAt time.Time     `json:"computed_at"`
}
