package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("not a conversation participant")
	ErrNotActive  = errors.New("conversation is not active")
)

type ConversationSource interface {
	GetByID(ctx context.Context, id string) (model.Conversation, error)
	ListGhosted(ctx context.Context, userID string, thresholdHours float64, now time.Time) ([]pgrepo.GhostedRecord, error)
	ListNeedingNudge(ctx context.Context, userID string, fromHours, toHours float64, now time.Time) ([]pgrepo.NudgeRecord, error)
	SetReminderSentAt(ctx context.Context, id string, until time.Time) error
}

type Config struct {
	NudgeAfter time.Duration
	BlockAfter time.Duration
	SnoozeFor  time.Duration
}

// NudgeItem is a conversation inside the soft window, not snoozed.
type NudgeItem struct {
	ConversationID string  `json:"conversation_id"`
	OtherUserID    string  `json:"other_user_id"`
	HoursInactive  float64 `json:"hours_inactive"`
}

// BlockedItem is a conversation past the hard threshold. Snoozing never
// removes items from this queue.
type BlockedItem struct {
	ConversationID        string  `json:"conversation_id"`
	OtherUserID           string  `json:"other_user_id"`
	HoursSinceLastMessage float64 `json:"hours_since_last_message"`
}

// State is the answer to "which conversations do I owe a reply to, and how
// urgently". Both queues are ordered oldest first.
type State struct {
	Nudge   []NudgeItem   `json:"nudge"`
	Blocked []BlockedItem `json:"blocked"`
}

type Service struct {
	conversations ConversationSource
	cfg           Config
	now           func() time.Time
}

type Dependencies struct {
	Conversations ConversationSource
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.NudgeAfter <= 0 {
		cfg.NudgeAfter = 48 * time.Hour
	}
	if cfg.BlockAfter <= cfg.NudgeAfter {
		cfg.BlockAfter = 72 * time.Hour
	}
	if cfg.SnoozeFor <= 0 {
		cfg.SnoozeFor = 24 * time.Hour
	}

	return &Service{
		conversations: deps.Conversations,
		cfg:           cfg,
		now:           time.Now,
	}
}

// GetState assembles the nudge and blocked queues for one user. Snoozed
// conversations are suppressed from the nudge queue while the marker has not
// lapsed; the blocked queue ignores snooze entirely.
func (s *Service) GetState(ctx context.Context, userID string) (State, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return State{}, ErrValidation
	}
	if s.conversations == nil {
		return State{}, fmt.Errorf("conversation source is nil")
	}

	now := s.now().UTC()
	nudgeFrom := s.cfg.NudgeAfter.Hours()
	nudgeTo := s.cfg.BlockAfter.Hours()

	nudgeRecords, err := s.conversations.ListNeedingNudge(ctx, userID, nudgeFrom, nudgeTo, now)
	if err != nil {
		return State{}, fmt.Errorf("list nudge candidates: %w", err)
	}

	nudge := make([]NudgeItem, 0, len(nudgeRecords))
	for _, rec := range nudgeRecords {
		if rec.SnoozedUntil != nil && rec.SnoozedUntil.After(now) {
			continue
		}
		nudge = append(nudge, NudgeItem{
			ConversationID: rec.ConversationID,
			OtherUserID:    rec.OtherUserID,
			HoursInactive:  rec.HoursInactive,
		})
	}

	ghosted, err := s.conversations.ListGhosted(ctx, userID, nudgeTo, now)
	if err != nil {
		return State{}, fmt.Errorf("list ghosted conversations: %w", err)
	}

	blocked := make([]BlockedItem, 0, len(ghosted))
	for _, rec := range ghosted {
		blocked = append(blocked, BlockedItem{
			ConversationID:        rec.ConversationID,
			OtherUserID:           rec.OtherUserID,
			HoursSinceLastMessage: rec.HoursSinceLastMessage,
		})
	}

	return State{Nudge: nudge, Blocked: blocked}, nil
}

// ConversationState classifies one conversation from userID's perspective.
func (s *Service) ConversationState(conv model.Conversation, userID string, now time.Time) enums.HealthState {
	if conv.Status != enums.ConversationStatusActive {
		return enums.HealthStateClosed
	}
	if conv.LastMessageAt == nil || conv.LastSenderID == userID {
		return enums.HealthStateActive
	}

	age := now.Sub(*conv.LastMessageAt)
	switch {
	case age >= s.cfg.BlockAfter:
		return enums.HealthStateBlocked
	case age >= s.cfg.NudgeAfter:
		if conv.ReminderSentAt != nil && conv.ReminderSentAt.After(now) {
			return enums.HealthStateActive
		}
		return enums.HealthStateNudge
	default:
		return enums.HealthStateActive
	}
}

// Snooze defers the soft nudge by stamping reminder_sent_at in the future.
// It has no effect on the blocked queue.
func (s *Service) Snooze(ctx context.Context, userID, conversationID string) (time.Time, error) {
	userID = strings.TrimSpace(userID)
	conversationID = strings.TrimSpace(conversationID)
	if userID == "" || conversationID == "" {
		return time.Time{}, ErrValidation
	}
	if s.conversations == nil {
		return time.Time{}, fmt.Errorf("conversation source is nil")
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return time.Time{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return time.Time{}, ErrForbidden
	}
	if conv.Status != enums.ConversationStatusActive {
		return time.Time{}, ErrNotActive
	}

	until := s.now().UTC().Add(s.cfg.SnoozeFor)
	if err := s.conversations.SetReminderSentAt(ctx, conversationID, until); err != nil {
		return time.Time{}, fmt.Errorf("set snooze marker: %w", err)
	}

	return until, nil
}
