// Package httputil downloads profiles from http(s) URLs.
//
// # Overview
//
// Commands that take a profile path also accept a URL. [Fetcher] downloads
// it with:
//
//   - Caching of the response body in a [cache.Cache] for [cache.TTLProfile]
//   - Automatic retry with exponential backoff via [Retry] for transient
//     failures (network errors, 429 and 5xx responses)
//   - A size limit on the body
//
// Usage:
//
//	f := httputil.NewFetcher(store)
//	data, err := f.Fetch(ctx, "https://example.com/cpu.pb.gz")
//
// # Retry
//
// [Retry] only retries errors wrapped with [cache.Retryable]; other errors
// are returned immediately.
package httputil
