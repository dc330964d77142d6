package ratelimit

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

const DefaultRetryAfter = 5 * time.Second

type retryPattern struct {
	name string
	re   *regexp.Regexp
}

// Known textual shapes, most specific first.
var knownRetryPatterns = []retryPattern{
	{name: "try-again-in", re: regexp.MustCompile(`(?i)try again in (\d+) seconds`)},
	{name: "retry-after-seconds", re: regexp.MustCompile(`(?i)retry after (\d+(?:\.\d+)?)s`)},
	{name: "retry-after-field", re: regexp.MustCompile(`retry_after"?\s*:\s*([\d.]+)`)},
}

// RetryAfterParser recovers the wait duration from a rate-limit signal.
type RetryAfterParser struct {
	patterns []retryPattern
	fallback time.Duration
}

func NewRetryAfterParser() *RetryAfterParser {
	return &RetryAfterParser{patterns: knownRetryPatterns, fallback: DefaultRetryAfter}
}

// Classify reports whether err is a rate-limit signal and, if so, how long to
// wait before retrying.
func (p *RetryAfterParser) Classify(err error) (time.Duration, bool) {
	if err == nil || !IsRateLimited(err) {
		return 0, false
	}
	return p.RetryAfter(err), true
}

// RetryAfter prefers the structured value, then the first matching text
// pattern, then the fallback.
func (p *RetryAfterParser) RetryAfter(err error) time.Duration {
	var limited *RateLimitedError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		return limited.RetryAfter
	}
	if d, ok := p.ParseText(err.Error()); ok {
		return d
	}
	return p.fallback
}

func (p *RetryAfterParser) ParseText(text string) (time.Duration, bool) {
	for _, pattern := range p.patterns {
		match := pattern.re.FindStringSubmatch(text)
		if len(match) < 2 {
			continue
		}
		seconds, err := strconv.ParseFloat(match[1], 64)
		if err != nil || seconds < 0 {
			continue
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	return 0, false
}
