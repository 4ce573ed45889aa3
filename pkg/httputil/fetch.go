package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flamechart/pkg/buildinfo"
	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/errors"
)

// DefaultMaxBytes bounds downloaded profiles.
const DefaultMaxBytes = 256 << 20

// Fetcher downloads profiles over HTTP.
type Fetcher struct {
	Client *http.Client
	// Cache stores response bodies. Nil disables caching.
	Cache    cache.Cache
	TTL      time.Duration
	MaxBytes int64

	Attempts   int
	RetryDelay time.Duration
	// MaxRetryDelay caps the backoff between attempts.
	MaxRetryDelay time.Duration

	Logger *log.Logger
}

// NewFetcher returns a fetcher with default limits caching into store.
func NewFetcher(store cache.Cache) *Fetcher {
	return &Fetcher{
		Client:     &http.Client{Timeout: 2 * time.Minute},
		Cache:      store,
		TTL:        cache.TTLProfile,
		MaxBytes:   DefaultMaxBytes,
		Attempts:      3,
		RetryDelay:    time.Second,
		MaxRetryDelay: 10 * time.Second,
		Logger:        log.New(io.Discard),
	}
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url, serving repeated requests from the cache.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := "fetch:" + cache.Hash([]byte(url))
	if f.Cache != nil {
		if data, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
			f.Logger.Debug("profile download cached", "url", url)
			return data, nil
		}
	}

	var data []byte
	backoff := Backoff{
		Attempts: f.Attempts,
		Delay:    f.RetryDelay,
		MaxDelay: f.MaxRetryDelay,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			f.Logger.Warn("profile download failed, retrying", "url", url, "attempt", attempt, "wait", wait, "err", err)
		},
	}
	err := backoff.Do(ctx, func() error {
		var err error
		data, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("profile downloaded", "url", url, "bytes", len(data))

	if f.Cache != nil {
		if err := f.Cache.Set(ctx, key, data, f.TTL); err != nil {
			f.Logger.Warn("cache profile download", "url", url, "err", err)
		}
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid url %s", url)
	}
	req.Header.Set("User-Agent", "flamechart/"+buildinfo.Version)

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeFileNotFound, "profile %s not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("fetch %s: %s", url, resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetch %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("read %s: %w", url, err))
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "profile %s exceeds %d bytes", url, f.MaxBytes)
	}
	return data, nil
}
