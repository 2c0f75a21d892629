package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled, "zero delay still reports cancellation")
}

func TestFixed(t *testing.T) {
	l := Fixed(15 * time.Millisecond)
	assert.Equal(t, 15*time.Millisecond, l.Interval())

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestJitterBounds(t *testing.T) {
	l := Jitter(3*time.Second, 6*time.Second)
	for i := 0; i < 1000; i++ {
		d := l.Next()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 6*time.Second)
	}
}

func TestJitterInjectedSource(t *testing.T) {
	var spans []int64
	l := Jitter(time.Second, 3*time.Second).WithSource(func(n int64) int64 {
		spans = append(spans, n)
		return n - 1
	})

	assert.Equal(t, 3*time.Second, l.Next(), "top of the range is inclusive")
	assert.Equal(t, []int64{int64(2*time.Second) + 1}, spans)

	l.WithSource(func(int64) int64 { return 0 })
	assert.Equal(t, time.Second, l.Next())
}

func TestJitterSwappedAndEqualBounds(t *testing.T) {
	l := Jitter(5*time.Millisecond, time.Millisecond)
	for i := 0; i < 100; i++ {
		d := l.Next()
		assert.GreaterOrEqual(t, d, time.Millisecond)
		assert.LessOrEqual(t, d, 5*time.Millisecond)
	}

	fixed := Jitter(2*time.Millisecond, 2*time.Millisecond).WithSource(func(int64) int64 {
		t.Fatal("source must not be called for an empty span")
		return 0
	})
	assert.Equal(t, 2*time.Millisecond, fixed.Next())
}

func TestJitterWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Jitter(time.Hour, 2*time.Hour).Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenBucket(t *testing.T) {
	b := TokenBucket(60, 0)
	assert.Equal(t, rate.Limit(1), b.Limit())

	// the bucket starts empty, so even the first token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, b.Wait(ctx))
}

func TestTokenBucketFirstWaitBlocks(t *testing.T) {
	b := TokenBucket(600, 3)

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "initial burst must not be spendable")

	start = time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestNone(t *testing.T) {
	require.NoError(t, None().Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None().Wait(ctx), context.Canceled)
}
