package optimize

import (
	"context"
	"time"

	"asa-cli/internal/appleads"
)

const (
	VisibilityAttempts = 10
	VisibilityDelay    = 500 * time.Millisecond
)

// WaitForResource calls fetch until it stops returning a not-found error.
// Any other error ends the wait immediately. After the last attempt the
// not-found error is returned. The delay only separates attempts.
func WaitForResource[T any](ctx context.Context, fetch func(context.Context) (T, error), attempts int, delay time.Duration) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		v, err := fetch(ctx)
		if err == nil {
			return v, nil
		}
		if !appleads.IsNotFound(err) || attempt >= attempts {
			return zero, err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
