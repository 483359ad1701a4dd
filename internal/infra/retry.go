package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Backoff configures Retry.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{
		Attempts: 3,
		Initial:  100 * time.Millisecond,
		Max:      5 * time.Second,
	}
}

// Retry runs fn up to b.Attempts times with exponential backoff.
// Context cancellation is returned immediately and never retried.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	var lastErr error
	delay := b.Initial

	for attempt := 1; attempt <= b.Attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == b.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > b.Max {
			delay = b.Max
		}
	}

	return lastErr
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
