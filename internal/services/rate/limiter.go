package rate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrRateLimited = errors.New("rate limited")

type CounterStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	SwipesPerMinute int
	SwipesPer10Sec  int
}

// Limiter enforces fixed-window swipe quotas backed by Redis counters. A
// short burst window sits inside the per-minute window so a client cannot
// drain the whole minute budget in one spike.
type Limiter struct {
	counters CounterStore
	cfg      Config
}

func NewLimiter(counters CounterStore, cfg Config) *Limiter {
	if cfg.SwipesPerMinute <= 0 {
		cfg.SwipesPerMinute = 60
	}
	if cfg.SwipesPer10Sec <= 0 {
		cfg.SwipesPer10Sec = 15
	}
	return &Limiter{counters: counters, cfg: cfg}
}

func (l *Limiter) AllowSwipe(ctx context.Context, userID int64) error {
	if l.counters == nil {
		return nil
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	windows := []struct {
		key    string
		window time.Duration
		limit  int64
	}{
		{fmt.Sprintf("rate:swipes:10s:%d", userID), 10 * time.Second, int64(l.cfg.SwipesPer10Sec)},
		{fmt.Sprintf("rate:swipes:min:%d", userID), time.Minute, int64(l.cfg.SwipesPerMinute)},
	}

	for _, w := range windows {
		count, _, err := l.counters.IncrementWindow(ctx, w.key, w.window)
		if err != nil {
			return fmt.Errorf("increment swipe window: %w", err)
		}
		if count > w.limit {
			return ErrRateLimited
		}
	}

	return nil
}
