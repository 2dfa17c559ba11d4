package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/swipes/internal/service"
)

// ErrMaxRetries reports that every attempt failed with a transient error.
var ErrMaxRetries = errors.New("max retries exceeded")

// Defaults for fields a RetryOptions leaves unset.
const (
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 100 * time.Millisecond
	defaultRetryMaxDelay   = 30 * time.Second
	defaultRetryMultiplier = 2.0
)

func normalizeRetryOptions(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultRetryAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultRetryDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultRetryMaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = defaultRetryMultiplier
	}
	return opts
}

// backoff hands out the wait before each retry, growing by Multiplier up to MaxDelay.
type backoff struct {
	next       time.Duration
	max        time.Duration
	multiplier float64
}

func newBackoff(opts service.RetryOptions) *backoff {
	opts = normalizeRetryOptions(opts)
	return &backoff{next: min(opts.InitialDelay, opts.MaxDelay), max: opts.MaxDelay, multiplier: opts.Multiplier}
}

func (b *backoff) Next() time.Duration {
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.multiplier), b.max)
	return d
}

// WithRetry runs op until it succeeds, returns an error that is not a TransientError,
// or uses up its attempts. Only side effects that are safe to repeat go through here,
// such as leaderboard upserts; purchases surface transient errors to the caller, who
// retries with the same idempotency token.
func WithRetry(ctx context.Context, op func() error, opts service.RetryOptions) error {
	opts = normalizeRetryOptions(opts)
	wait := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		delay := wait.Next()
		LogWarn("Transient store failure, retrying", Fields{
			"attempt":      attempt,
			"max_attempts": opts.MaxAttempts,
			"delay":        delay.String(),
			"error":        err.Error(),
		})
		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
