package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoute = "reactions:42"

func newTestExecutor(clock clockwork.Clock, policy domain.RateLimitPolicy) *Executor {
	if policy.CallsPerSecond == 0 {
		policy.CallsPerSecond = math.Inf(1)
	}
	return New(WithClock(clock), WithPolicy(policy))
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestExecutorDoesNotInvokeBeforeBucketReset(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{})
	ex.Observe(testRoute, 5, 0, 2*time.Second)

	invokedAt := make(chan time.Time, 1)
	done := make(chan error, 1)
	go func() {
		done <- ex.Do(context.Background(), testRoute, func(context.Context) error {
			invokedAt <- clock.Now()
			return nil
		})
	}()

	ctx := waitCtx(t)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)
	assertNotInvoked(t, invokedAt)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(999 * time.Millisecond)
	assertNotInvoked(t, invokedAt)

	clock.Advance(100 * time.Millisecond)

	select {
	case at := <-invokedAt:
		assert.False(t, at.Before(start.Add(2*time.Second)), "invoked at %s", at.Sub(start))
	case <-ctx.Done():
		t.Fatal("action was never invoked")
	}
	require.NoError(t, <-done)

	bucket, ok := ex.Snapshot(testRoute)
	require.True(t, ok)
	assert.Equal(t, 4, bucket.Remaining)
}

func assertNotInvoked(t *testing.T, invoked <-chan time.Time) {
	t.Helper()
	select {
	case <-invoked:
		t.Fatal("action invoked before bucket reset")
	default:
	}
}

func TestExecutorRetriesAfterStructuredRateLimit(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{})

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- ex.Do(context.Background(), testRoute, func(context.Context) error {
			if calls.Add(1) == 1 {
				return &RateLimitedError{RetryAfter: 1500 * time.Millisecond}
			}
			return nil
		})
	}()

	ctx := waitCtx(t)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	bucket, ok := ex.Snapshot(testRoute)
	require.True(t, ok)
	assert.Equal(t, 0, bucket.Remaining)
	assert.Equal(t, start.Add(1500*time.Millisecond), bucket.ResetAt)

	clock.Advance(1550 * time.Millisecond)

	require.NoError(t, <-done)
	assert.Equal(t, int32(2), calls.Load())

	bucket, _ = ex.Snapshot(testRoute)
	assert.Equal(t, 4, bucket.Remaining)
}

func TestExecutorRetriesAfterTextualRateLimit(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{})

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- ex.Do(context.Background(), testRoute, func(context.Context) error {
			if calls.Add(1) == 1 {
				return fmt.Errorf("list reactions: %w", &RateLimitedError{Message: `{"retry_after": 0.25}`})
			}
			return nil
		})
	}()

	require.NoError(t, clock.BlockUntilContext(waitCtx(t), 1))
	clock.Advance(300 * time.Millisecond)

	require.NoError(t, <-done)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecutorPropagatesOtherErrorsWithoutRetry(t *testing.T) {
	t.Parallel()

	ex := newTestExecutor(clockwork.NewFakeClock(), domain.RateLimitPolicy{})
	boom := errors.New("unknown message")

	calls := 0
	err := ex.Do(context.Background(), testRoute, func(context.Context) error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	bucket, ok := ex.Snapshot(testRoute)
	require.True(t, ok)
	assert.Equal(t, 5, bucket.Remaining)
}

func TestExecutorStopsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{MaxRetries: 2})

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- ex.Do(context.Background(), testRoute, func(context.Context) error {
			calls.Add(1)
			return fmt.Errorf("%w: Try again in 1 seconds", ErrRateLimited)
		})
	}()

	ctx := waitCtx(t)
	for range 2 {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(1050 * time.Millisecond)
	}

	err := <-done
	require.ErrorIs(t, err, ErrRetriesExhausted)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecutorGlobalGateSpacesCalls(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ex := New(WithClock(clock), WithPolicy(domain.RateLimitPolicy{CallsPerSecond: 1, BucketLimit: 100}))

	invoked := make(chan time.Time, 3)
	done := make(chan error, 1)
	go func() {
		for range 3 {
			if err := ex.Do(context.Background(), testRoute, func(context.Context) error {
				invoked <- clock.Now()
				return nil
			}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	ctx := waitCtx(t)
	times := []time.Time{<-invoked}
	for range 2 {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(time.Second)
		times = append(times, <-invoked)
	}
	require.NoError(t, <-done)

	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), time.Second)
	}
}

func TestExecutorCapsConcurrentCalls(t *testing.T) {
	t.Parallel()

	ex := newTestExecutor(clockwork.NewFakeClock(), domain.RateLimitPolicy{Concurrency: 2, BucketLimit: 100})

	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ex.Do(context.Background(), fmt.Sprintf("reactions:%d", i), func(context.Context) error {
				current := inFlight.Add(1)
				for {
					seen := peak.Load()
					if current <= seen || peak.CompareAndSwap(seen, current) {
						break
					}
				}
				<-release
				inFlight.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), peak.Load())
}

func TestExecutorCancelDuringBucketWait(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{})
	ex.Observe(testRoute, 5, 0, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := false
	done := make(chan error, 1)
	go func() {
		done <- ex.Do(ctx, testRoute, func(context.Context) error {
			called = true
			return nil
		})
	}()

	require.NoError(t, clock.BlockUntilContext(waitCtx(t), 1))
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, called)
}

func TestExecutorResetOnlyMovesForward(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	ex := newTestExecutor(clock, domain.RateLimitPolicy{})

	ex.Observe(testRoute, 10, 7, 5*time.Second)
	ex.markLimited(testRoute, time.Second)

	bucket, ok := ex.Snapshot(testRoute)
	require.True(t, ok)
	assert.Equal(t, 10, bucket.Limit)
	assert.Equal(t, 0, bucket.Remaining)
	assert.Equal(t, start.Add(5*time.Second), bucket.ResetAt)

	ex.Observe(testRoute, 0, -3, 0)
	bucket, _ = ex.Snapshot(testRoute)
	assert.Equal(t, 10, bucket.Limit)
	assert.Equal(t, 0, bucket.Remaining)
}

func TestExecuteReturnsValue(t *testing.T) {
	t.Parallel()

	ex := newTestExecutor(clockwork.NewFakeClock(), domain.RateLimitPolicy{})

	got, err := Execute(context.Background(), ex, testRoute, func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = Execute(context.Background(), ex, testRoute, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.EqualError(t, err, "boom")
}
