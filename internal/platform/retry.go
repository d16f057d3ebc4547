package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// ConnectAttempts bounds startup connection retries.
const ConnectAttempts = 5

// Connect runs dial with Fibonacci backoff until it succeeds or the attempts
// run out. Used only at startup, while dependencies may still be booting.
func Connect(ctx context.Context, logger *slog.Logger, name string, dial func(ctx context.Context) error) error {
	attempt := 0
	b := retry.WithMaxRetries(ConnectAttempts-1, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := dial(ctx); err != nil {
			logger.Warn("dependency not ready", "dependency", name, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		logger.Info("dependency connected", "dependency", name, "attempt", attempt)
		return nil
	})
}
