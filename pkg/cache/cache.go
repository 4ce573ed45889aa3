// Package cache stores rendered artifacts and decoded profiles between runs.
//
// # Backends
//
//   - [FileCache]: one header-plus-payload file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash of the input profile and
// every option that changes the output. Two requests that would produce the
// same bytes share an entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss; err is
	// reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ProfileKeyOpts are the inputs that change how a profile file decodes.
type ProfileKeyOpts struct {
	Format     string `json:"format"`
	SampleType string `json:"sample_type,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Kind       string  `json:"kind"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	DPR        float64 `json:"dpr"`
	Theme      string  `json:"theme"`
	Left       float64 `json:"left"`
	Span       float64 `json:"span"`
	Top        float64 `json:"top"`
	Search     string  `json:"search,omitempty"`
	SearchMode string  `json:"search_mode,omitempty"`
	Focus      bool    `json:"focus,omitempty"`
	RootFilter string  `json:"root_filter,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Timings    string  `json:"timings,omitempty"` // hash of the timing markers
}

// Keyer builds cache keys.
type Keyer interface {
	// ProfileKey identifies a decoded profile by the hash of its source.
	ProfileKey(contentHash string, opts ProfileKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a profile.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes options into "kind:hash" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ProfileKey(contentHash string, opts ProfileKeyOpts) string {
	return hashKey("profile", contentHash, opts)
}

func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}

// Default entry lifetimes.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLProfile  = 24 * time.Hour
)
