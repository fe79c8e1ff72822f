package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const connectBackoff = 500 * time.Millisecond

type pingFunc func(ctx context.Context) error

// waitForPing retries ping until it succeeds, attempts run out or ctx ends.
// The delay grows linearly with each failed attempt.
func waitForPing(ctx context.Context, ping pingFunc, attempts int, logger *zap.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn("dependency not reachable yet",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * connectBackoff):
		}
	}
	return fmt.Errorf("unreachable after %d attempts: %w", attempts, err)
}
