package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the minimal blob API the service needs. Implementations
// must be safe for concurrent use.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RetryableError marks a storage failure that may succeed on retry
// (network errors, 5xx responses, throttling).
type RetryableError struct {
	Op  string
	Key string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s %s (retryable): %v", e.Op, e.Key, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}
