package model

import (
	"time"

	"github.com/amora-app/backend/internal/domain/enums"
)

// Swipe is one audit-log entry. The current direction for a pair lives in
// swipe_state, which later actions supersede; the log itself is append-only.
type Swipe struct {
	ID        int64                `json:"id"`
	ActorID   string               `json:"actor_id"`
	TargetID  string               `json:"target_id"`
	Direction enums.SwipeDirection `json:"direction"`
	CreatedAt time.Time            `json:"created_at"`
}
