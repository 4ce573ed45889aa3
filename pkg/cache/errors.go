package cache

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNetwork marks backend connection failures.
	ErrNetwork = errors.New("network error")

	// ErrNoClient is returned by a RedisCache built without a client.
	ErrNoClient = errors.New("redis client not configured")
)

// RetryableError marks a transient failure: a dropped connection, a busy
// upstream. Callers that loop on failures retry only these.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// classify marks network failures of a backend as retryable. Protocol
// errors pass through unchanged.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	}
	return err
}
