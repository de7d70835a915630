// Package throttle implements the rate-control layer around all remote
// SharePoint calls: a throttling-aware retry policy with exponential
// backoff, and proactive pacing between traversal steps.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
	"github.com/minhvo/spsweep/internal/sweep/metrics"
)

// Operation is one remote call that may be throttled. It carries no
// knowledge of what the call does; connect, enumerate and mutate calls are
// all wrapped the same way.
type Operation[T any] func(ctx context.Context) (T, error)

// SleepFunc suspends the caller for d or until ctx is done. Injectable so
// tests can record waits instead of sleeping.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy executes operations with retry on throttled failures.
// Non-retryable failures propagate immediately without consuming attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	log   *slog.Logger
	sleep SleepFunc
}

// DefaultPolicyConfig mirrors the service guidance: a handful of attempts
// with a multi-second starting backoff.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
)

// NewPolicy creates a retry policy. Zero or negative inputs fall back to
// the defaults.
func NewPolicy(maxAttempts int, baseDelay time.Duration, log *slog.Logger) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		log:         log,
		sleep:       ctxSleep,
	}
}

// WithSleep replaces the sleep function. Used by tests.
func (p *Policy) WithSleep(fn SleepFunc) *Policy {
	p.sleep = fn
	return p
}

// Execute runs op up to p.MaxAttempts times. Success returns immediately.
// A throttled failure (429/503) backs off and retries: the server-supplied
// Retry-After is used verbatim when present, otherwise
// BaseDelay * 2^(attempt-1). Any other failure returns on the spot.
// Exhausting every attempt returns an error wrapping domain.ErrRetryExhausted.
func Execute[T any](ctx context.Context, p *Policy, description string, op Operation[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		metrics.RemoteCallsTotal.WithLabelValues(description).Inc()

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.IsThrottled(err) {
			// Fail fast: permission, not-found and malformed-request
			// errors never improve with waiting.
			return zero, err
		}
		metrics.ThrottleEventsTotal.WithLabelValues(description).Inc()

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.delayFor(attempt, err)
		p.log.Warn("remote operation throttled, backing off",
			"operation", description,
			"status", statusCode(err),
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
		)
		if serr := p.sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}

	metrics.RetriesExhaustedTotal.WithLabelValues(description).Inc()
	p.log.Error("remote operation failed after all attempts",
		"operation", description,
		"attempts", p.MaxAttempts,
		"error", lastErr,
	)
	return zero, fmt.Errorf("%s: %w: %w", description, domain.ErrRetryExhausted, lastErr)
}

// Do runs a result-less operation through the policy.
func Do(ctx context.Context, p *Policy, description string, op func(ctx context.Context) error) error {
	_, err := Execute(ctx, p, description, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// delayFor computes the wait before the next attempt. attempt is 1-based.
func (p *Policy) delayFor(attempt int, err error) time.Duration {
	if hint := domain.RetryAfterHint(err); hint > 0 {
		return hint
	}
	return p.BaseDelay << (attempt - 1)
}

func statusCode(err error) int {
	var re *domain.RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
