package matches

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

type fakeMatchStore struct {
	matches []pgrepo.MatchRecord
}

func (f *fakeMatchStore) GetByPair(_ context.Context, userID, targetID string) (pgrepo.MatchRecord, error) {
	for _, rec := range f.matches {
		if (rec.UserAID == userID && rec.UserBID == targetID) || (rec.UserAID == targetID && rec.UserBID == userID) {
			return rec, nil
		}
	}
	return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
}

func (f *fakeMatchStore) ListForUser(_ context.Context, userID string, _ int) ([]pgrepo.MatchRecord, error) {
	out := make([]pgrepo.MatchRecord, 0, len(f.matches))
	for _, rec := range f.matches {
		if rec.UserAID == userID || rec.UserBID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeConversationStore struct {
	byID      map[string]model.Conversation
	byMatchID map[int64]string
	touched   []string
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		byID:      make(map[string]model.Conversation),
		byMatchID: make(map[int64]string),
	}
}

func (f *fakeConversationStore) CreateIfAbsent(_ context.Context, _ pgx.Tx, id string, matchID int64, userAID, userBID string, now time.Time) (model.Conversation, bool, error) {
	if existingID, ok := f.byMatchID[matchID]; ok {
		return f.byID[existingID], false, nil
	}
	conv := model.Conversation{
		ID:        id,
		MatchID:   matchID,
		UserAID:   userAID,
		UserBID:   userBID,
		Status:    enums.ConversationStatusActive,
		CreatedAt: now,
	}
	f.byID[id] = conv
	f.byMatchID[matchID] = id
	return conv, true, nil
}

func (f *fakeConversationStore) GetByID(_ context.Context, id string) (model.Conversation, error) {
	conv, ok := f.byID[id]
	if !ok {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	return conv, nil
}

func (f *fakeConversationStore) TouchLastMessage(_ context.Context, _ pgx.Tx, id, senderID string, at time.Time) error {
	conv, ok := f.byID[id]
	if !ok {
		return pgrepo.ErrConversationNotFound
	}
	conv.LastMessageAt = &at
	conv.LastSenderID = senderID
	conv.ReminderSentAt = nil
	f.byID[id] = conv
	f.touched = append(f.touched, id)
	return nil
}

type fakeMessageStore struct {
	messages   []model.Message
	readMarked []string
}

func (f *fakeMessageStore) Append(_ context.Context, _ pgx.Tx, msg model.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageStore) ListRecent(_ context.Context, conversationID string, _ int) ([]model.Message, error) {
	out := make([]model.Message, 0, len(f.messages))
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, conversationID, readerID string) error {
	f.readMarked = append(f.readMarked, conversationID+"|"+readerID)
	return nil
}

func newTestService(matchStore *fakeMatchStore, convStore *fakeConversationStore, msgStore *fakeMessageStore) *Service {
	var seq int
	return &Service{
		matchStore:        matchStore,
		conversationStore: convStore,
		messageStore:      msgStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		newID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		now: func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestListShowsOtherParticipant(t *testing.T) {
	matchStore := &fakeMatchStore{matches: []pgrepo.MatchRecord{
		{ID: 1, UserAID: "1111", UserBID: "2222"},
		{ID: 2, UserAID: "2222", UserBID: "3333"},
	}}
	svc := newTestService(matchStore, newFakeConversationStore(), &fakeMessageStore{})

	got, err := svc.List(context.Background(), "2222", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].OtherUserID != "1111" || got[1].OtherUserID != "3333" {
		t.Fatalf("other participant wrong: %+v", got)
	}
}

func TestOpenConversationRequiresMatch(t *testing.T) {
	svc := newTestService(&fakeMatchStore{}, newFakeConversationStore(), &fakeMessageStore{})

	if _, err := svc.OpenConversation(context.Background(), "1111", "2222"); !errors.Is(err, ErrNotMatched) {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
}

func TestOpenConversationIsLazyAndStable(t *testing.T) {
	matchStore := &fakeMatchStore{matches: []pgrepo.MatchRecord{{ID: 7, UserAID: "1111", UserBID: "2222"}}}
	convStore := newFakeConversationStore()
	svc := newTestService(matchStore, convStore, &fakeMessageStore{})
	ctx := context.Background()

	first, err := svc.OpenConversation(ctx, "1111", "2222")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	second, err := svc.OpenConversation(ctx, "2222", "1111")
	if err != nil {
		t.Fatalf("second open: %v", err)
	}

	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected one stable conversation, got %q and %q", first.ID, second.ID)
	}
	if len(convStore.byID) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(convStore.byID))
	}
}

func TestRecordMessageUpdatesMarkerInSameTx(t *testing.T) {
	matchStore := &fakeMatchStore{matches: []pgrepo.MatchRecord{{ID: 7, UserAID: "1111", UserBID: "2222"}}}
	convStore := newFakeConversationStore()
	msgStore := &fakeMessageStore{}
	svc := newTestService(matchStore, convStore, msgStore)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, "1111", "2222")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	msg, err := svc.RecordMessage(ctx, "2222", conv.ID, "hey!")
	if err != nil {
		t.Fatalf("record message: %v", err)
	}
	if msg.SenderID != "2222" || msg.Body != "hey!" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	stored := convStore.byID[conv.ID]
	if stored.LastSenderID != "2222" || stored.LastMessageAt == nil {
		t.Fatalf("last-message marker not advanced: %+v", stored)
	}
	if len(msgStore.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(msgStore.messages))
	}
}

func TestRecordMessageRejectsOutsiderAndClosed(t *testing.T) {
	matchStore := &fakeMatchStore{matches: []pgrepo.MatchRecord{{ID: 7, UserAID: "1111", UserBID: "2222"}}}
	convStore := newFakeConversationStore()
	svc := newTestService(matchStore, convStore, &fakeMessageStore{})
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, "1111", "2222")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.RecordMessage(ctx, "9999", conv.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}

	closed := convStore.byID[conv.ID]
	closed.Status = enums.ConversationStatusClosed
	convStore.byID[conv.ID] = closed
	if _, err := svc.RecordMessage(ctx, "1111", conv.ID, "hi"); !errors.Is(err, ErrConversationClosed) {
		t.Fatalf("expected ErrConversationClosed, got %v", err)
	}
}

func TestListMessagesMarksRead(t *testing.T) {
	matchStore := &fakeMatchStore{matches: []pgrepo.MatchRecord{{ID: 7, UserAID: "1111", UserBID: "2222"}}}
	convStore := newFakeConversationStore()
	msgStore := &fakeMessageStore{}
	svc := newTestService(matchStore, convStore, msgStore)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, "1111", "2222")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.RecordMessage(ctx, "1111", conv.ID, "hello"); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.ListMessages(ctx, "9999", conv.ID, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}

	got, err := svc.ListMessages(ctx, "2222", conv.ID, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if len(msgStore.readMarked) != 1 || msgStore.readMarked[0] != conv.ID+"|2222" {
		t.Fatalf("expected read marker for reader, got %v", msgStore.readMarked)
	}
}
