// Package ratelimit schedules calls against a rate-limited upstream. One
// Executor owns every per-route bucket, the global concurrency slots and the
// process-wide throughput gate.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bnema/reaction-tally/internal/domain"
	"github.com/bnema/reaction-tally/internal/logging"
	"github.com/bnema/reaction-tally/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// lowRemaining is the bucket level below which successful calls are logged.
const lowRemaining = 3

// Bucket is the quota state of one route key.
type Bucket struct {
	Limit       int
	Remaining   int
	ResetAt     time.Time
	LastUpdated time.Time
}

type Executor struct {
	clock  clockwork.Clock
	logger logrus.FieldLogger
	parser *RetryAfterParser
	policy domain.RateLimitPolicy

	slots *semaphore.Weighted
	gate  *rate.Limiter

	mu      sync.Mutex
	buckets map[string]*Bucket
}

var _ ports.Executor = (*Executor)(nil)

type Option func(*Executor)

func WithClock(clock clockwork.Clock) Option {
	return func(e *Executor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Executor) {
		e.logger = logging.OrDiscard(logger)
	}
}

// WithPolicy overrides the default limits. Zero fields keep their defaults.
func WithPolicy(policy domain.RateLimitPolicy) Option {
	return func(e *Executor) {
		if policy.Concurrency > 0 {
			e.policy.Concurrency = policy.Concurrency
		}
		if policy.CallsPerSecond > 0 {
			e.policy.CallsPerSecond = policy.CallsPerSecond
		}
		if policy.BucketLimit > 0 {
			e.policy.BucketLimit = policy.BucketLimit
		}
		if policy.MaxRetries > 0 {
			e.policy.MaxRetries = policy.MaxRetries
		}
		if policy.BucketWindow > 0 {
			e.policy.BucketWindow = policy.BucketWindow
		}
		if policy.ResetBuffer > 0 {
			e.policy.ResetBuffer = policy.ResetBuffer
		}
	}
}

func WithRetryAfterParser(parser *RetryAfterParser) Option {
	return func(e *Executor) {
		if parser != nil {
			e.parser = parser
		}
	}
}

func New(opts ...Option) *Executor {
	e := &Executor{
		clock:   clockwork.NewRealClock(),
		logger:  logging.Discard(),
		parser:  NewRetryAfterParser(),
		policy:  domain.DefaultRateLimitPolicy(),
		buckets: make(map[string]*Bucket),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.slots = semaphore.NewWeighted(int64(e.policy.Concurrency))
	e.gate = rate.NewLimiter(gateLimit(e.policy.CallsPerSecond), 1)

	return e
}

func gateLimit(callsPerSecond float64) rate.Limit {
	if math.IsInf(callsPerSecond, 1) {
		return rate.Inf
	}
	return rate.Limit(callsPerSecond)
}

// Execute runs work through ex and returns its value.
func Execute[T any](ctx context.Context, ex ports.Executor, routeKey string, work func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := ex.Do(ctx, routeKey, func(ctx context.Context) error {
		value, err := work(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}

// Do runs work under routeKey's bucket, a global slot and the global gate.
// Rate-limit signals from work are waited out and the call is retried, up
// to the policy's MaxRetries. Any other error is returned unchanged.
func (e *Executor) Do(ctx context.Context, routeKey string, work func(ctx context.Context) error) error {
	logger := e.logger.WithField("route", routeKey)

	for attempt := 0; ; attempt++ {
		err := e.attempt(ctx, routeKey, logger, work)
		if err == nil {
			return nil
		}

		retryAfter, limited := e.parser.Classify(err)
		if !limited {
			return err
		}
		if attempt >= e.policy.MaxRetries {
			return fmt.Errorf("%w: route %s after %d retries: %w", ErrRetriesExhausted, routeKey, attempt, err)
		}

		e.markLimited(routeKey, retryAfter)
		wait := retryAfter + e.policy.ResetBuffer
		logger.WithFields(logrus.Fields{
			"retry_after": retryAfter,
			"attempt":     attempt + 1,
		}).Warnf("rate limit hit, waiting %s before retry", wait)

		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (e *Executor) attempt(ctx context.Context, routeKey string, logger logrus.FieldLogger, work func(ctx context.Context) error) error {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.slots.Release(1)

	if err := e.awaitBucket(ctx, routeKey, logger); err != nil {
		return err
	}
	if err := e.passGate(ctx); err != nil {
		return err
	}

	if err := work(ctx); err != nil {
		return err
	}

	if remaining := e.recordSuccess(routeKey); remaining < lowRemaining {
		logger.Debugf("bucket getting low: %d remaining", remaining)
	}
	return nil
}

func (e *Executor) awaitBucket(ctx context.Context, routeKey string, logger logrus.FieldLogger) error {
	for {
		wait := e.reserveBucket(routeKey)
		if wait <= 0 {
			return nil
		}

		logger.Infof("bucket exhausted, waiting %s for reset", wait)
		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// reserveBucket replenishes an expired bucket and returns how long the
// caller must wait before it may proceed.
func (e *Executor) reserveBucket(routeKey string) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	b := e.bucketLocked(routeKey, now)
	if !now.Before(b.ResetAt) {
		b.Remaining = b.Limit
		b.ResetAt = now.Add(e.policy.BucketWindow)
		b.LastUpdated = now
	}
	if b.Remaining > 0 {
		return 0
	}

	return b.ResetAt.Sub(now) + e.policy.ResetBuffer
}

func (e *Executor) passGate(ctx context.Context) error {
	now := e.clock.Now()
	reservation := e.gate.ReserveN(now, 1)
	if !reservation.OK() {
		return errors.New("global rate gate cannot admit a call")
	}

	if err := e.sleep(ctx, reservation.DelayFrom(now)); err != nil {
		reservation.CancelAt(e.clock.Now())
		return err
	}
	return nil
}

func (e *Executor) recordSuccess(routeKey string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	b := e.bucketLocked(routeKey, now)
	b.Remaining = max(0, b.Remaining-1)
	b.LastUpdated = now

	return b.Remaining
}

func (e *Executor) markLimited(routeKey string, retryAfter time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	b := e.bucketLocked(routeKey, now)
	b.Remaining = 0
	if reset := now.Add(retryAfter); reset.After(b.ResetAt) {
		b.ResetAt = reset
	}
	b.LastUpdated = now
}

// Observe applies quota information reported by the upstream to routeKey's
// bucket. A non-positive limit or resetAfter leaves that field unchanged.
func (e *Executor) Observe(routeKey string, limit, remaining int, resetAfter time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	b := e.bucketLocked(routeKey, now)
	if limit > 0 {
		b.Limit = limit
	}
	b.Remaining = min(max(0, remaining), b.Limit)
	if resetAfter > 0 {
		if reset := now.Add(resetAfter); reset.After(b.ResetAt) {
			b.ResetAt = reset
		}
	}
	b.LastUpdated = now
}

// Snapshot returns a copy of routeKey's bucket.
func (e *Executor) Snapshot(routeKey string) (Bucket, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.buckets[routeKey]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

func (e *Executor) bucketLocked(routeKey string, now time.Time) *Bucket {
	b, ok := e.buckets[routeKey]
	if !ok {
		b = &Bucket{
			Limit:       e.policy.BucketLimit,
			Remaining:   e.policy.BucketLimit,
			ResetAt:     now.Add(e.policy.BucketWindow),
			LastUpdated: now,
		}
		e.buckets[routeKey] = b
	}
	return b
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := e.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
