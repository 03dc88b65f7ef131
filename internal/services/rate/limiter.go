package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

// LimitedError is surfaced to callers as a distinguishable "retry later"
// signal, never a generic failure.
type LimitedError struct {
	RetryAfterSec int64
}

func (e LimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSec)
}

func (e LimitedError) RetryAfter() int64 {
	return e.RetryAfterSec
}

func IsLimited(err error) (*LimitedError, bool) {
	var le LimitedError
	if errors.As(err, &le) {
		return &le, true
	}
	return nil, false
}

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Limiter enforces a max-requests-per-window policy on a shared counter
// keyed by (identifier, endpoint). The identifier is user:<id> for
// authenticated callers and ip:<address> otherwise.
type Limiter struct {
	store WindowStore
	cfg   Config
}

func NewLimiter(store WindowStore, cfg Config) *Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return &Limiter{
		store: store,
		cfg:   cfg,
	}
}

// UserIdentifier and IPIdentifier build the shared-counter identifier.
func UserIdentifier(userID string) string {
	return "user:" + userID
}

func IPIdentifier(addr string) string {
	return "ip:" + addr
}

// Allow consumes one slot for (identifier, endpoint). When the window is
// exhausted it returns a LimitedError carrying the retry-after duration.
func (l *Limiter) Allow(ctx context.Context, identifier, endpoint string) error {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(endpoint) == "" {
		return ErrValidation
	}
	if l.store == nil {
		return fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, windowKey(identifier, endpoint), l.cfg.Window)
	if err != nil {
		return fmt.Errorf("increment rate window: %w", err)
	}
	if count > int64(l.cfg.MaxRequests) {
		return LimitedError{RetryAfterSec: ceilSeconds(ttl)}
	}

	return nil
}

func windowKey(identifier, endpoint string) string {
	return "rate:" + identifier + ":" + endpoint
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
