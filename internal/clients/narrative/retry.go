package narrative

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// withRetry runs op up to maxRetries+1 times with exponential backoff.
// Non-retryable errors return immediately.
func (c *client) withRetry(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt == c.maxRetries {
			break
		}

		delay := c.retryDelay * time.Duration(1<<attempt)
		slog.Warn("Provider call failed, backing off",
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	if c.maxRetries == 0 || !errors.IsRetryable(lastErr) {
		return lastErr
	}
	return errors.Wrapf(lastErr, "Failed after %d attempts: %s", c.maxRetries+1, errors.GetMessage(lastErr))
}

func (c *client) sleep(ctx context.Context, d time.Duration) error {
	wake := make(chan struct{})
	timer := c.clock.AfterFunc(d, func() { close(wake) })

	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return errors.Aborted("generation cancelled").WithCause(ctx.Err())
	}
}
