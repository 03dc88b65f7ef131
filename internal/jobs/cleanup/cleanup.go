package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = time.Hour

// ReminderStore clears lapsed snooze markers and reports how many were
// dropped.
type ReminderStore interface {
	ClearExpiredReminders(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job periodically drops expired snooze markers. The markers are also
// ignored once lapsed, so a missed tick only delays hygiene.
type Job struct {
	store    ReminderStore
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func New(store ReminderStore, interval time.Duration, log *zap.Logger) *Job {
	if interval <= 0 {
		interval = defaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Job{
		store:    store,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run ticks until the context is cancelled. One pass runs immediately on
// start so a restart does not wait a full interval.
func (j *Job) Run(ctx context.Context) {
	if j.store == nil {
		j.log.Warn("reminder cleanup disabled, store is not configured")
		return
	}

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Job) sweep(ctx context.Context) {
	cleared, err := j.store.ClearExpiredReminders(ctx, j.now().UTC())
	if err != nil {
		j.log.Warn("reminder cleanup sweep failed", zap.Error(err))
		return
	}
	if cleared > 0 {
		j.log.Info("cleared expired snooze reminders", zap.Int64("count", cleared))
	}
}
