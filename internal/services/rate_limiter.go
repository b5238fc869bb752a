package services

import (
	"context"
	"time"

	"r2d2-service/config"
)

// EmailCounter is the slice of the email store the limiter needs.
type EmailCounter interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// RateLimiter allows at most limit records created per trailing window. The check and the
// later write are not atomic, so concurrent dispatchers can overshoot the limit slightly.
type RateLimiter struct {
	counter EmailCounter
	limit   int64
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(counter EmailCounter, cfg config.ThrottleConfig) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   int64(cfg.Limit),
		window:  cfg.Window,
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(ctx context.Context) (bool, error) {
	count, err := l.counter.CountSince(ctx, l.now().Add(-l.window))
	if err != nil {
		return false, err
	}
	return count < l.limit, nil
}
