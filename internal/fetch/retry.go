package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/avast/retry-go/v4"
)

// RateLimitError marks an HTTP 429 response. RetryAfter is zero when the
// server sent no Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// transientError marks failures worth retrying: timeouts, connection
// errors, 5xx responses.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so the retry policy will retry it.
func Transient(err error) error {
	return &transientError{err: err}
}

// IsRetryable reports whether the policy should retry after err.
func IsRetryable(err error) bool {
	var te *transientError
	var rle *RateLimitError
	return errors.As(err, &te) || errors.As(err, &rle)
}

// Policy is the retry policy wrapping every external fetch call.
// Transient failures back off exponentially between MinDelay and MaxDelay
// with jitter; 429 responses sleep the server-requested duration, or a
// random rateLimitMin..rateLimitMax when none was requested. Both paths
// consume the same attempt budget.
type Policy struct {
	Attempts uint
	MinDelay time.Duration
	MaxDelay time.Duration

	// Timer is injectable for tests; nil uses real time.
	Timer retry.Timer

	// randDelay is injectable for tests; nil uses math/rand.
	randDelay func(min, max time.Duration) time.Duration
}

const (
	rateLimitMin = 5 * time.Second
	rateLimitMax = 15 * time.Second

	// jitterMax is added on top of the exponential delay.
	jitterMax = 500 * time.Millisecond
)

// DefaultPolicy returns the fixed production policy: 3 attempts, 4s..10s.
func DefaultPolicy() *Policy {
	return &Policy{
		Attempts: 3,
		MinDelay: 4 * time.Second,
		MaxDelay: 10 * time.Second,
	}
}

// Do runs op under the policy. Errors not marked retryable stop immediately;
// the last error is returned once attempts are exhausted.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.RetryIf(IsRetryable),
		retry.DelayType(p.delayFor),
		retry.LastErrorOnly(true),
	}
	if p.Timer != nil {
		opts = append(opts, retry.WithTimer(p.Timer))
	}
	return retry.Do(op, opts...)
}

// delayFor computes the sleep before retry n (0-based).
func (p *Policy) delayFor(n uint, err error, _ *retry.Config) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		if rle.RetryAfter > 0 {
			return rle.RetryAfter
		}
		return p.random(rateLimitMin, rateLimitMax)
	}

	delay := p.MinDelay << n
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	return delay + p.random(0, jitterMax)
}

func (p *Policy) random(min, max time.Duration) time.Duration {
	if p.randDelay != nil {
		return p.randDelay(min, max)
	}
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
