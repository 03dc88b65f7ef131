package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotMatched         = errors.New("users are not matched")
	ErrForbidden          = errors.New("not a conversation participant")
	ErrConversationClosed = errors.New("conversation is closed")
)

type MatchStore interface {
	GetByPair(ctx context.Context, userID, targetID string) (pgrepo.MatchRecord, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]pgrepo.MatchRecord, error)
}

type ConversationStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, id string, matchID int64, userAID, userBID string, now time.Time) (model.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (model.Conversation, error)
	TouchLastMessage(ctx context.Context, tx pgx.Tx, id, senderID string, at time.Time) error
}

type MessageStore interface {
	Append(ctx context.Context, tx pgx.Tx, msg model.Message) error
	ListRecent(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
}

// Summary is one entry of the match list, viewed from the requester's side.
type Summary struct {
	MatchID     int64     `json:"match_id"`
	OtherUserID string    `json:"other_user_id"`
	MatchedAt   time.Time `json:"matched_at"`
}

type Service struct {
	matchStore        MatchStore
	conversationStore ConversationStore
	messageStore      MessageStore
	runTx             func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	newID             func() string
	now               func() time.Time
}

type Dependencies struct {
	Pool              *pgxpool.Pool
	MatchStore        MatchStore
	ConversationStore ConversationStore
	MessageStore      MessageStore
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	return &Service{
		matchStore:        deps.MatchStore,
		conversationStore: deps.ConversationStore,
		messageStore:      deps.MessageStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// List returns the requester's matches, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	records, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		other := rec.UserBID
		if other == userID {
			other = rec.UserAID
		}
		out = append(out, Summary{
			MatchID:     rec.ID,
			OtherUserID: other,
			MatchedAt:   rec.CreatedAt,
		})
	}

	return out, nil
}

// OpenConversation creates the conversation for a matched pair on first open
// and returns the existing one afterwards. A concurrent first open is settled
// by the match uniqueness constraint, not by locking.
func (s *Service) OpenConversation(ctx context.Context, userID, targetID string) (model.Conversation, error) {
	userID = strings.TrimSpace(userID)
	targetID = strings.TrimSpace(targetID)
	if userID == "" || targetID == "" || userID == targetID {
		return model.Conversation{}, ErrValidation
	}
	if s.matchStore == nil || s.conversationStore == nil || s.runTx == nil {
		return model.Conversation{}, fmt.Errorf("conversation dependencies are not configured")
	}

	match, err := s.matchStore.GetByPair(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Conversation{}, ErrNotMatched
		}
		return model.Conversation{}, fmt.Errorf("lookup match: %w", err)
	}

	var conv model.Conversation
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, _, err := s.conversationStore.CreateIfAbsent(txCtx, tx, s.newID(), match.ID, match.UserAID, match.UserBID, s.now().UTC())
		if err != nil {
			return err
		}
		conv = created
		return nil
	}); err != nil {
		return model.Conversation{}, err
	}

	return conv, nil
}

// RecordMessage appends a message and advances the last-message marker in the
// same transaction. Sending a reply is what resolves nudge and blocked queue
// entries, so the marker update must never lag the message row.
func (s *Service) RecordMessage(ctx context.Context, senderID, conversationID, body string) (model.Message, error) {
	senderID = strings.TrimSpace(senderID)
	conversationID = strings.TrimSpace(conversationID)
	if senderID == "" || conversationID == "" || strings.TrimSpace(body) == "" {
		return model.Message{}, ErrValidation
	}
	if s.conversationStore == nil || s.messageStore == nil || s.runTx == nil {
		return model.Message{}, fmt.Errorf("message dependencies are not configured")
	}

	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return model.Message{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conv.HasParticipant(senderID) {
		return model.Message{}, ErrForbidden
	}
	if conv.Status != enums.ConversationStatusActive {
		return model.Message{}, ErrConversationClosed
	}

	msg := model.Message{
		ID:             s.newID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.messageStore.Append(txCtx, tx, msg); err != nil {
			return err
		}
		return s.conversationStore.TouchLastMessage(txCtx, tx, conversationID, senderID, msg.CreatedAt)
	}); err != nil {
		return model.Message{}, err
	}

	return msg, nil
}

// ListMessages returns the newest messages and marks the other side's
// messages read for the requester.
func (s *Service) ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]model.Message, error) {
	userID = strings.TrimSpace(userID)
	conversationID = strings.TrimSpace(conversationID)
	if userID == "" || conversationID == "" {
		return nil, ErrValidation
	}
	if s.conversationStore == nil || s.messageStore == nil {
		return nil, fmt.Errorf("message dependencies are not configured")
	}

	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrForbidden
	}

	messages, err := s.messageStore.ListRecent(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if err := s.messageStore.MarkRead(ctx, conversationID, userID); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}

	return messages, nil
}
