package listing

import (
	"context"
	"time"
)

// PageDelay is the pause between page requests.
const PageDelay = 2 * time.Second

// RateLimiter paces page requests. Wait is called after every page.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits a fixed interval.
type FixedDelay struct {
	Interval time.Duration
}

// Wait implements RateLimiter. It returns early with the context's error
// if the context is cancelled.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d.Interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never waits.
type NoDelay struct{}

// Wait implements RateLimiter.
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
