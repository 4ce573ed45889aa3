package httputil

import (
	"context"
	"time"

	"github.com/matzehuels/flamechart/pkg/cache"
)

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Delay    time.Duration // wait before the first retry
	MaxDelay time.Duration // cap on a single wait; 0 means uncapped

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Do calls fn until it succeeds, fails with an error not marked
// [cache.Retryable], or runs out of attempts. It returns the last error, or
// ctx.Err() when cancelled while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	wait := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !cache.IsRetryable(err) || attempt == attempts {
			return err
		}
		if b.MaxDelay > 0 && wait > b.MaxDelay {
			wait = b.MaxDelay
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

// Retry is Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn).
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}
