package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces sequential requests
type Limiter interface {
	// Wait blocks until the next request may be sent, or ctx is done
	Wait(ctx context.Context) error
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FixedInterval waits the same duration every time
type FixedInterval struct {
	interval time.Duration
}

// Fixed returns a limiter that sleeps d on every Wait
func Fixed(d time.Duration) *FixedInterval {
	return &FixedInterval{interval: d}
}

// Wait sleeps the fixed interval
func (f *FixedInterval) Wait(ctx context.Context) error {
	return Sleep(ctx, f.interval)
}

// Interval returns the configured delay
func (f *FixedInterval) Interval() time.Duration {
	return f.interval
}

// RandomInterval waits a uniformly random duration in [min, max]
type RandomInterval struct {
	min, max time.Duration

	mu   sync.Mutex
	rand func(n int64) int64
}

// Jitter returns a limiter drawing each delay uniformly from [min, max].
// Bounds given in the wrong order are swapped.
func Jitter(min, max time.Duration) *RandomInterval {
	if max < min {
		min, max = max, min
	}
	return &RandomInterval{min: min, max: max, rand: rand.Int64N}
}

// WithSource replaces the random source. fn must return a value in [0, n).
func (r *RandomInterval) WithSource(fn func(n int64) int64) *RandomInterval {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = fn
	return r
}

// Next draws the next delay without sleeping
func (r *RandomInterval) Next() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.min
	if span := int64(r.max - r.min); span > 0 {
		d += time.Duration(r.rand(span + 1))
	}
	return d
}

// Wait sleeps a freshly drawn delay
func (r *RandomInterval) Wait(ctx context.Context) error {
	return Sleep(ctx, r.Next())
}

// Bucket is a token bucket backed by golang.org/x/time/rate
type Bucket struct {
	limiter *rate.Limiter
}

// TokenBucket allows perMinute requests per minute with the given burst.
// A burst below one is raised to one. The bucket starts empty, so the first
// Wait already blocks for one refill interval.
func TokenBucket(perMinute int, burst int) *Bucket {
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(perMinute, 1))), burst)
	l.AllowN(time.Now(), burst)
	return &Bucket{limiter: l}
}

// Wait blocks until a token is available
func (b *Bucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Limit returns the refill rate in events per second
func (b *Bucket) Limit() rate.Limit {
	return b.limiter.Limit()
}

type noWait struct{}

// None returns a limiter that never waits
func None() Limiter {
	return noWait{}
}

func (noWait) Wait(ctx context.Context) error {
	return ctx.Err()
}
