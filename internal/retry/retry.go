// Package retry provides the two waiting patterns the client needs:
// bounded-count retry with a fixed delay, and unbounded poll-until-ready.
// Both are the same combinator with different budgets.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes a retry budget. MaxAttempts == 0 means unbounded.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Unbounded returns a policy that never gives up.
func Unbounded(interval time.Duration) Policy {
	return Policy{MaxAttempts: 0, Interval: interval}
}

// Bounded returns a policy limited to attempts tries.
func Bounded(attempts int, interval time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Interval: interval}
}

// Do runs op until it returns nil, the budget is exhausted, or ctx is
// cancelled. onRetry, if non-nil, is called after each failed attempt that
// will be retried, with the 1-based attempt number and its error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	var lastErr error

	for attempt := 1; p.MaxAttempts == 0 || attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.MaxAttempts != 0 && attempt == p.MaxAttempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Interval):
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", p.MaxAttempts, lastErr)
}
