package classifier

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryOpts configures the bounded retry around completion calls
type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
}

// retry calls f up to MaxAttempts times with exponential backoff.
// It returns the last error, or the context error if ctx ends while waiting.
func retry(ctx context.Context, opts RetryOpts, f func(context.Context, int) error) error {
	var err error
	wait := opts.InitialWait
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		err = f(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt == attempts || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		sleepDur := wait
		if opts.Jitter {
			sleepDur = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		if opts.MaxWait > 0 && sleepDur > opts.MaxWait {
			sleepDur = opts.MaxWait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepDur):
		}

		wait *= 2
		if opts.MaxWait > 0 && wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
	return err
}
