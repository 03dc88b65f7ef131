package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/enums"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnsupportedAction = errors.New("unsupported swipe direction")
)

type SwipeStore interface {
	AppendLog(ctx context.Context, tx pgx.Tx, actorID, targetID, direction string, now time.Time) (pgrepo.SwipeRecord, error)
	UpsertState(ctx context.Context, tx pgx.Tx, actorID, targetID, direction string, now time.Time) error
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, actorID, targetID string) (bool, error)
	GetByPair(ctx context.Context, userID, targetID string) (pgrepo.MatchRecord, error)
}

type Service struct {
	swipeStore SwipeStore
	matchStore MatchStore
	runTx      func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now        func() time.Time
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	SwipeStore SwipeStore
	MatchStore MatchStore
}

type Result struct {
	Direction    enums.SwipeDirection
	MatchCreated bool
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	return &Service{
		swipeStore: deps.SwipeStore,
		matchStore: deps.MatchStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// Record applies one directed swipe. The directed state machine is
// unset -> liked | passed; re-issuing the same direction is an idempotent
// upsert and switching direction overwrites. A like additionally attempts
// match creation; a duplicate match insert under concurrent reciprocal likes
// is absorbed by the uniqueness constraint and reported as success.
func (s *Service) Record(ctx context.Context, actorID, targetID string, direction enums.SwipeDirection) (Result, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)
	if actorID == "" || targetID == "" || actorID == targetID {
		return Result{}, ErrValidation
	}
	if !direction.Valid() {
		return Result{}, ErrUnsupportedAction
	}
	if s.swipeStore == nil || s.matchStore == nil || s.runTx == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()

	matchCreated := false
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.swipeStore.AppendLog(txCtx, tx, actorID, targetID, string(direction), now); err != nil {
			return err
		}
		if err := s.swipeStore.UpsertState(txCtx, tx, actorID, targetID, string(direction), now); err != nil {
			return err
		}

		if direction != enums.SwipeDirectionLike {
			return nil
		}

		created, err := s.matchStore.CreateIfMutualLike(txCtx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		matchCreated = created
		return nil
	}); err != nil {
		return Result{}, err
	}

	return Result{
		Direction:    direction,
		MatchCreated: matchCreated,
	}, nil
}

// MatchStatus reports whether the canonical pair is matched.
func (s *Service) MatchStatus(ctx context.Context, userID, targetID string) (pgrepo.MatchRecord, bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" {
		return pgrepo.MatchRecord{}, false, ErrValidation
	}
	if s.matchStore == nil {
		return pgrepo.MatchRecord{}, false, fmt.Errorf("match store is nil")
	}

	rec, err := s.matchStore.GetByPair(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, false, nil
		}
		return pgrepo.MatchRecord{}, false, err
	}

	return rec, true, nil
}
