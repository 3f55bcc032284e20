package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

const (
	lockRetryAttempts  = 3
	lockRetryBaseDelay = 50 * time.Millisecond
)

// withLockRetry runs op, retrying only on transient lock-contention
// SQLSTATEs (serialization failure, deadlock, lock not available) with
// exponential backoff and jitter. Logical conflicts such as an already
// claimed order pass straight through; retrying those would just repeat the
// same answer.
func withLockRetry(ctx context.Context, logger *slog.Logger, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < lockRetryAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !persistence.IsLockContention(err) {
			return err
		}

		lastErr = err
		if attempt < lockRetryAttempts-1 {
			delay := lockRetryBaseDelay*time.Duration(1<<attempt) + time.Duration(rand.Intn(50))*time.Millisecond
			logger.Warn("lock contention, retrying",
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("lock retry attempts exhausted: %w", lastErr)
}
