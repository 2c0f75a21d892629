// Package ratelimit paces the sequential requests igunfollow sends.
//
// Every limiter implements Limiter, whose Wait blocks until the next request
// may go out and returns ctx.Err() early when the context is cancelled.
//
// Available limiters:
//
//   - Fixed: the same delay every time. Used between list pages.
//   - Jitter: a uniform random delay in [min, max]. Used between unfollows.
//   - TokenBucket: a golang.org/x/time/rate bucket for a requests-per-minute cap.
//   - None: never waits. Used by dry runs and tests.
//
// Usage:
//
//	pages := ratelimit.Fixed(time.Second)
//	mutations := ratelimit.Jitter(3*time.Second, 6*time.Second)
//
//	if err := mutations.Wait(ctx); err != nil {
//	    return err // cancelled
//	}
package ratelimit
