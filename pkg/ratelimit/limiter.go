package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until the next request may be issued. It returns ctx.Err()
	// if the context ends first.
	Wait(ctx context.Context) error
}

// DelayLimiter lets its first request through immediately and sleeps the full
// delay before every later one, however long ago the previous request was.
type DelayLimiter struct {
	delay time.Duration
	used  bool
	mu    sync.Mutex
}

// NewDelayLimiter creates a limiter with the given pause between requests.
func NewDelayLimiter(delay time.Duration) *DelayLimiter {
	return &DelayLimiter{delay: delay}
}

// Wait implements Limiter.
func (dl *DelayLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dl.mu.Lock()
	first := !dl.used
	dl.used = true
	dl.mu.Unlock()

	if first || dl.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(dl.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
