package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/dgallion1/cvparse/internal/logger"
	"github.com/dgallion1/cvparse/internal/storage"
)

// MaxRetries bounds attempts for a single storage operation.
const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

// withRetry runs fn until it succeeds, fails with a non-retryable error or
// MaxRetries attempts are used up.
func withRetry(ctx context.Context, log *logger.Logger, op string, backoff func(int) time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		err = fn()
		if err == nil || !storage.IsRetryable(err) {
			return err
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("retryable storage error")
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
