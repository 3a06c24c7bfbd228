package driver

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned by PollUntil when the condition never held
// within the allowed window.
var ErrPollTimeout = errors.New("poll timeout elapsed")

// PollUntil checks the condition on a fixed interval until it returns true,
// the timeout elapses, or the context is cancelled. Target pages surface
// elements with unpredictable latency, so every awaited condition in the
// engine goes through this one primitive; tests shrink interval and timeout
// to zero for determinism.
func PollUntil(ctx context.Context, interval, timeout time.Duration, condition func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)

	for {
		ok, err := condition(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if !time.Now().Before(deadline) {
			return ErrPollTimeout
		}

		if interval <= 0 {
			// Zero-delay mode still honors cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
