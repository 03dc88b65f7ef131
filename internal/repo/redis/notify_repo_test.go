package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newMiniRedisNotifier(t *testing.T) (*miniredis.Miniredis, *goredis.Client, *NotifyRepo) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client, NewNotifyRepo(client, zap.NewNop())
}

func TestNotifyClosurePublishesToRecipientChannel(t *testing.T) {
	mr, client, repo := newMiniRedisNotifier(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "notify:closure:2222")
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	repo.NotifyClosure(ctx, "2222", "c1", "It was nice meeting you.")

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	want := `{"conversation_id":"c1","message":"It was nice meeting you."}`
	if msg.Payload != want {
		t.Fatalf("payload = %q, want %q", msg.Payload, want)
	}
}

func TestNotifyClosureToleratesBrokerOutage(t *testing.T) {
	mr, client, repo := newMiniRedisNotifier(t)
	defer func() { _ = client.Close() }()
	mr.Close()

	// Must not panic or block; delivery is best effort.
	repo.NotifyClosure(context.Background(), "2222", "c1", "bye")
}

func TestNotifyClosureSkipsEmptyRecipient(t *testing.T) {
	mr, client, repo := newMiniRedisNotifier(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo.NotifyClosure(context.Background(), "", "c1", "bye")
}
