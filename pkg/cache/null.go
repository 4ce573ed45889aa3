package cache

import (
	"context"
	"time"
)

// Manager is implemented by caches whose entries can be counted and
// dropped from the command line.
type Manager interface {
	Cache
	Clear() (removed int, err error)
	Stats() (entries int, size int64, err error)
}

// NullCache misses on every lookup and drops every write. It stands in
// for --no-cache runs, for a cache directory that does not exist yet and
// for an unreachable Redis.
type NullCache struct{}

// NewNullCache returns the shared null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
func (NullCache) Clear() (int, error) { return 0, nil }
func (NullCache) Stats() (int, int64, error) { return 0, 0, nil }

var (
	_ Manager = NullCache{}
	_ Manager = (*FileCache)(nil)
)
