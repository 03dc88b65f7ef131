package closure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/model"
	"github.com/amora-app/backend/internal/domain/rules"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("not a conversation participant")
	ErrNotActive  = errors.New("conversation is not active")
)

type ConversationStore interface {
	GetByID(ctx context.Context, id string) (model.Conversation, error)
	Close(ctx context.Context, tx pgx.Tx, id string, status enums.ConversationStatus, closedBy, reason, message string, at time.Time) error
}

type TemplateSource interface {
	List(ctx context.Context) ([]model.ClosureTemplate, error)
	Get(ctx context.Context, id int64) (model.ClosureTemplate, error)
}

type ReputationStore interface {
	IncrementGracefulClosures(ctx context.Context, tx pgx.Tx, userID string) (int64, error)
}

// Notifier delivers the goodbye message to the other participant. Delivery is
// best effort and happens after commit; a failed notification never unwinds
// the closure.
type Notifier interface {
	NotifyClosure(ctx context.Context, recipientID, conversationID, message string)
}

// Request is one closure intent. Exactly one of TemplateID or Message is
// consulted, selected by Resolution; archive ignores both.
type Request struct {
	ConversationID string
	Resolution     enums.ClosureResolution
	TemplateID     int64
	Message        string
}

type Result struct {
	Status           enums.ConversationStatus
	Message          string
	GracefulClosures int64
}

type Service struct {
	conversations ConversationStore
	templates     TemplateSource
	reputation    ReputationStore
	notifier      Notifier
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	log           *zap.Logger
	now           func() time.Time
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Conversations ConversationStore
	Templates     TemplateSource
	Reputation    ReputationStore
	Notifier      Notifier
	Logger        *zap.Logger
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		conversations: deps.Conversations,
		templates:     deps.Templates,
		reputation:    deps.Reputation,
		notifier:      deps.Notifier,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		log: log,
		now: time.Now,
	}
}

// Close ends a conversation on behalf of a participant. Template and custom
// resolutions record the goodbye message and credit the closer's graceful
// counter; archive closes silently with neither. The status change and the
// counter increment commit together.
func (s *Service) Close(ctx context.Context, userID string, req Request) (Result, error) {
	userID = strings.TrimSpace(userID)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	if userID == "" || req.ConversationID == "" {
		return Result{}, ErrValidation
	}
	if !req.Resolution.Valid() {
		return Result{}, fmt.Errorf("unknown resolution %q: %w", req.Resolution, ErrValidation)
	}
	if s.conversations == nil || s.runTx == nil {
		return Result{}, fmt.Errorf("closure dependencies are not configured")
	}

	conv, err := s.conversations.GetByID(ctx, req.ConversationID)
	if err != nil {
		return Result{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return Result{}, ErrForbidden
	}
	if conv.Status != enums.ConversationStatusActive {
		return Result{}, ErrNotActive
	}

	message, status, err := s.resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}

	var graceful int64
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.conversations.Close(txCtx, tx, req.ConversationID, status, userID, string(req.Resolution), message, s.now().UTC()); err != nil {
			return err
		}
		if req.Resolution == enums.ClosureResolutionArchive || s.reputation == nil {
			return nil
		}
		count, err := s.reputation.IncrementGracefulClosures(txCtx, tx, userID)
		if err != nil {
			return err
		}
		graceful = count
		return nil
	}); err != nil {
		return Result{}, err
	}

	if message != "" && s.notifier != nil {
		s.notifier.NotifyClosure(ctx, conv.OtherParticipant(userID), req.ConversationID, message)
	}
	s.log.Info("conversation closed",
		zap.String("conversation_id", req.ConversationID),
		zap.String("resolution", string(req.Resolution)))

	return Result{
		Status:           status,
		Message:          message,
		GracefulClosures: graceful,
	}, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (string, enums.ConversationStatus, error) {
	switch req.Resolution {
	case enums.ClosureResolutionTemplate:
		if s.templates == nil {
			return "", "", fmt.Errorf("template source is nil")
		}
		tpl, err := s.templates.Get(ctx, req.TemplateID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrClosureTemplateNotFound) {
				return "", "", fmt.Errorf("template %d: %w", req.TemplateID, ErrValidation)
			}
			return "", "", fmt.Errorf("load closure template: %w", err)
		}
		return tpl.Body, enums.ConversationStatusClosed, nil

	case enums.ClosureResolutionCustom:
		if err := rules.ValidateClosureMessage(req.Message); err != nil {
			return "", "", fmt.Errorf("%v: %w", err, ErrValidation)
		}
		return req.Message, enums.ConversationStatusClosed, nil

	case enums.ClosureResolutionArchive:
		return "", enums.ConversationStatusArchived, nil

	default:
		return "", "", ErrValidation
	}
}

// Templates exposes the immutable goodbye catalog, ordered for display.
func (s *Service) Templates(ctx context.Context) ([]model.ClosureTemplate, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("template source is nil")
	}
	return s.templates.List(ctx)
}
