package model

import (
	"time"

	"github.com/amora-app/backend/internal/domain/enums"
)

type Conversation struct {
	ID             string                   `json:"id"`
	MatchID        int64                    `json:"match_id"`
	UserAID        string                   `json:"user_a_id"`
	UserBID        string                   `json:"user_b_id"`
	Status         enums.ConversationStatus `json:"status"`
	LastMessageAt  *time.Time               `json:"last_message_at"`
	LastSenderID   string                   `json:"last_sender_id"`
	ReminderSentAt *time.Time               `json:"reminder_sent_at"`
	ClosedAt       *time.Time               `json:"closed_at"`
	ClosedBy       string                   `json:"closed_by"`
	ClosureReason  string                   `json:"closure_reason"`
	ClosureMessage string                   `json:"closure_message"`
	CreatedAt      time.Time                `json:"created_at"`
}

func (c Conversation) OtherParticipant(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

func (c Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}
