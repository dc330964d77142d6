package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrRetriesExhausted = errors.New("rate limit retries exhausted")
)

// RateLimitedError is returned by transports when the upstream refused a
// call for quota reasons. RetryAfter is zero when the upstream did not send a
// usable value; Message then carries the raw response text.
type RateLimitedError struct {
	RetryAfter time.Duration
	Global     bool
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %.3fs", e.RetryAfter.Seconds())
	}
	return "rate limited"
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
