// Package ratelimit paces requests to the comic site.
//
// The DelayLimiter makes the first request of a process free and then sleeps
// a fixed delay before each following request. A limiter is owned by the
// fetch orchestrator for the lifetime of a run; it holds no global state.
//
// Usage:
//
//	limiter := ratelimit.NewDelayLimiter(time.Second)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // interrupted
//	}
//	// issue request
package ratelimit
