package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/flamechart/pkg/cache"
	fcerrors "github.com/matzehuels/flamechart/pkg/errors"
)

func testFetcher(t *testing.T, store cache.Cache) *Fetcher {
	t.Helper()
	f := NewFetcher(store)
	f.RetryDelay = time.Millisecond
	return f
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/cpu.pb.gz": true,
		"http://localhost:8080/x":       true,
		"cpu.pb.gz":                     false,
		"/tmp/https://x":                false,
		"ftp://example.com/x":           false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetchCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("main;a 1\n"))
	}))
	defer srv.Close()

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := testFetcher(t, store)

	for i := 0; i < 2; i++ {
		data, err := f.Fetch(context.Background(), srv.URL+"/stacks.folded")
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "main;a 1\n" {
			t.Errorf("data = %q", data)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestFetchRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testFetcher(t, nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" || hits.Load() != 3 {
		t.Errorf("data = %q after %d hits", data, hits.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		max    int64
		code   fcerrors.Code
	}{
		{"not found", http.StatusNotFound, "", 0, fcerrors.ErrCodeFileNotFound},
		{"forbidden", http.StatusForbidden, "", 0, fcerrors.ErrCodeInvalidInput},
		{"too large", http.StatusOK, "0123456789", 4, fcerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := testFetcher(t, nil)
			if tt.max > 0 {
				f.MaxBytes = tt.max
			}
			_, err := f.Fetch(context.Background(), srv.URL)
			if !fcerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	permanent := errors.New("permanent")
	transient := errors.New("transient")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success", []error{nil}, 1, nil},
		{"permanent stops", []error{permanent}, 1, permanent},
		{"transient then ok", []error{cache.Retryable(transient), nil}, 2, nil},
		{"exhausted", []error{cache.Retryable(transient), cache.Retryable(transient), cache.Retryable(transient)}, 3, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return cache.Retryable(errors.New("x")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffCapsDelay(t *testing.T) {
	var waits []time.Duration
	b := Backoff{
		Attempts: 4,
		Delay:    time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			waits = append(waits, wait)
		},
	}
	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		return cache.Retryable(errors.New("busy"))
	})
	if err == nil || calls != 4 {
		t.Fatalf("err = %v after %d calls, want failure after 4", err, calls)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 2 * time.Millisecond}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
}
