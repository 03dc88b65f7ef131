package swipes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/rules"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

// memStore mimics the database semantics the engine relies on: single-valued
// directed state per pair and an atomic insert-if-absent for matches. The
// mutex stands in for the uniqueness constraint under concurrent writers.
type memStore struct {
	mu      sync.Mutex
	log     []pgrepo.SwipeRecord
	state   map[string]string
	matches map[string]pgrepo.MatchRecord
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		state:   make(map[string]string),
		matches: make(map[string]pgrepo.MatchRecord),
	}
}

func stateKey(actorID, targetID string) string {
	return actorID + "|" + targetID
}

func (m *memStore) AppendLog(_ context.Context, _ pgx.Tx, actorID, targetID, direction string, now time.Time) (pgrepo.SwipeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	rec := pgrepo.SwipeRecord{
		ID:        m.nextID,
		ActorID:   actorID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: now,
	}
	m.log = append(m.log, rec)
	return rec, nil
}

func (m *memStore) UpsertState(_ context.Context, _ pgx.Tx, actorID, targetID, direction string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state[stateKey(actorID, targetID)] = direction
	return nil
}

func (m *memStore) CreateIfMutualLike(_ context.Context, _ pgx.Tx, actorID, targetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state[stateKey(targetID, actorID)] != string(enums.SwipeDirectionLike) {
		return false, nil
	}

	key := rules.PairKey(actorID, targetID)
	if _, exists := m.matches[key]; exists {
		return false, nil
	}

	userA, userB := rules.CanonicalPair(actorID, targetID)
	m.nextID++
	m.matches[key] = pgrepo.MatchRecord{
		ID:        m.nextID,
		UserAID:   userA,
		UserBID:   userB,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (m *memStore) GetByPair(_ context.Context, userID, targetID string) (pgrepo.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.matches[rules.PairKey(userID, targetID)]
	if !ok {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return rec, nil
}

func newTestService(store *memStore) *Service {
	return &Service{
		swipeStore: store,
		matchStore: store,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		now: time.Now,
	}
}

func TestRecordValidation(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	tests := []struct {
		name      string
		actor     string
		target    string
		direction enums.SwipeDirection
		wantErr   error
	}{
		{name: "empty actor", actor: "", target: "22", direction: enums.SwipeDirectionLike, wantErr: ErrValidation},
		{name: "empty target", actor: "11", target: " ", direction: enums.SwipeDirectionLike, wantErr: ErrValidation},
		{name: "self swipe", actor: "11", target: "11", direction: enums.SwipeDirectionLike, wantErr: ErrValidation},
		{name: "bad direction", actor: "11", target: "22", direction: "superlike", wantErr: ErrUnsupportedAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Record(ctx, tt.actor, tt.target, tt.direction); err != tt.wantErr {
				t.Fatalf("unexpected error: got %v want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordMutualLikeCreatesSingleMatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if first.MatchCreated {
		t.Fatalf("one-directional like must not create a match")
	}

	second, err := svc.Record(ctx, "2222", "1111", enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if !second.MatchCreated {
		t.Fatalf("reciprocal like must create the match")
	}

	if len(store.matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(store.matches))
	}
	rec, ok, err := svc.MatchStatus(ctx, "2222", "1111")
	if err != nil || !ok {
		t.Fatalf("match status: ok=%v err=%v", ok, err)
	}
	if rec.UserAID != "1111" || rec.UserBID != "2222" {
		t.Fatalf("match pair not canonical: (%s,%s)", rec.UserAID, rec.UserBID)
	}
}

func TestRecordRepeatedLikeIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := svc.Record(ctx, "2222", "1111", enums.SwipeDirectionLike); err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}

	again, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("repeated like must not error: %v", err)
	}
	if again.MatchCreated {
		t.Fatalf("repeated like must not report a new match")
	}
	if len(store.matches) != 1 {
		t.Fatalf("expected exactly one match after repeat, got %d", len(store.matches))
	}
}

func TestRecordDirectionSwitchOverwrites(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionPass); err != nil {
		t.Fatalf("pass: %v", err)
	}

	if got := store.state[stateKey("1111", "2222")]; got != string(enums.SwipeDirectionPass) {
		t.Fatalf("direction switch must overwrite state: got %s", got)
	}
	if len(store.log) != 2 {
		t.Fatalf("audit log must retain both actions, got %d entries", len(store.log))
	}
}

func TestRecordConcurrentReciprocalLikes(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := newMemStore()
		svc := newTestService(store)
		ctx := context.Background()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Record(ctx, "2222", "1111", enums.SwipeDirectionLike)
		}()
		wg.Wait()

		if len(store.matches) > 1 {
			t.Fatalf("iteration %d: concurrent likes produced %d matches", i, len(store.matches))
		}

		// Reconcile the interleaving where both writers miss the other's
		// like; a follow-up like from either side must still converge on
		// exactly one match and no error.
		if _, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike); err != nil {
			t.Fatalf("iteration %d: reconciling like failed: %v", i, err)
		}
		if len(store.matches) != 1 {
			t.Fatalf("iteration %d: expected exactly one match, got %d", i, len(store.matches))
		}
	}
}

func TestRecordPassNeverMatches(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "1111", "2222", enums.SwipeDirectionLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	result, err := svc.Record(ctx, "2222", "1111", enums.SwipeDirectionPass)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if result.MatchCreated || len(store.matches) != 0 {
		t.Fatalf("pass must never create a match")
	}
}
