package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrPollExhausted is returned when every attempt ran without reaching a
// terminal state.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// PollConfig configures a fixed-interval polling loop.
type PollConfig struct {
	// Interval is the delay between two attempts.
	Interval time.Duration
	// MaxAttempts is the maximum number of checks, including the first.
	MaxAttempts int
	// OnPending is called after each non-terminal attempt.
	OnPending func(attempt int)
}

// DefaultPollConfig returns 3s intervals with 120 attempts.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    3 * time.Second,
		MaxAttempts: 120,
	}
}

// PollFunc performs one check. done reports a terminal state; a non-nil
// error aborts polling immediately.
type PollFunc[T any] func(ctx context.Context, attempt int) (result T, done bool, err error)

// Poll runs fn until it reports done, fails, or MaxAttempts is reached.
func Poll[T any](ctx context.Context, cfg PollConfig, fn PollFunc[T]) (T, error) {
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, done, err := fn(ctx, attempt)
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}

		if cfg.OnPending != nil {
			cfg.OnPending(attempt)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, ErrPollExhausted
}
