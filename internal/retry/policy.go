// Package retry provides a bounded exponential backoff policy for calls to flaky upstreams.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy retries an operation while its error is classified as retryable.
//
// The wait before retry n (0-based) is BaseDelay * 2^n, so a 2s base gives 2s, 4s, 8s.
// A Policy holds no per-call state and may be shared between goroutines.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Retryable reports whether err is transient. A nil Retryable never retries.
	Retryable func(err error) bool
	// Sleep waits for d or until ctx is done. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// Logger receives attempt diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Delay returns the wait that precedes retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

// Do calls op until it succeeds, fails with a non-retryable error, or MaxAttempts is reached.
// A non-retryable error is returned unchanged; exhaustion is reported as *ExhaustedError.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		retryable := p.Retryable != nil && p.Retryable(lastErr)
		if !retryable {
			return lastErr
		}
		if attempt == maxAttempts-1 {
			break
		}

		delay := p.Delay(attempt)
		logger.WarnContext(ctx, "retryable failure, backing off",
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", lastErr,
		)
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt+1, err)
		}
	}

	return &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
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
