package model

import "time"

// Match exists iff both directed likes exist. The pair is canonical:
// UserAID sorts lexicographically before UserBID. Immutable once created.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}
