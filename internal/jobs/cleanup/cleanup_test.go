package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeReminderStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	cleared int64
	err     error
	swept   chan struct{}
}

func (s *fakeReminderStore) ClearExpiredReminders(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	s.cutoffs = append(s.cutoffs, cutoff)
	s.mu.Unlock()
	if s.swept != nil {
		select {
		case s.swept <- struct{}{}:
		default:
		}
	}
	return s.cleared, s.err
}

func (s *fakeReminderStore) sweepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cutoffs)
}

func TestRunSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	store := &fakeReminderStore{cleared: 3, swept: make(chan struct{}, 1)}
	job := New(store, time.Hour, zap.NewNop())

	baseTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return baseTime }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	select {
	case <-store.swept:
	case <-time.After(time.Second):
		t.Fatalf("expected an immediate sweep on start")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job did not stop on cancel")
	}

	if got := store.sweepCount(); got != 1 {
		t.Fatalf("sweeps = %d, want 1", got)
	}
	if !store.cutoffs[0].Equal(baseTime) {
		t.Fatalf("cutoff = %v, want %v", store.cutoffs[0], baseTime)
	}
}

func TestSweepToleratesStoreError(t *testing.T) {
	store := &fakeReminderStore{err: errors.New("pool closed")}
	job := New(store, time.Hour, zap.NewNop())

	job.sweep(context.Background())

	if got := store.sweepCount(); got != 1 {
		t.Fatalf("sweeps = %d, want 1", got)
	}
}

func TestRunWithoutStoreReturns(t *testing.T) {
	job := New(nil, time.Hour, zap.NewNop())

	done := make(chan struct{})
	go func() {
		job.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job without store must return immediately")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	job := New(&fakeReminderStore{}, 0, nil)
	if job.interval != time.Hour {
		t.Fatalf("interval = %v, want %v", job.interval, time.Hour)
	}
	if job.log == nil {
		t.Fatalf("logger must default to a nop logger")
	}
}
