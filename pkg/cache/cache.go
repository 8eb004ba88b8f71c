// Package cache provides the key-value caching layer for computed series
// and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entry files under a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so callers never assemble them by hand.
// [ScopedKeyer] namespaces keys when several tenants share one backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per cached item kind.
const (
	TTLSeries   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiration.
// Get reports a miss as (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts holds the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Palette string  `json:"palette"`
	Title   string  `json:"title"`
}

// Keyer builds cache keys.
type Keyer interface {
	// SeriesKey keys the computed series of one period of a payload.
	SeriesKey(payloadHash, period string) string
	// ArtifactKey keys one rendered output of a series.
	ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SeriesKey returns "series:<hash>".
func (DefaultKeyer) SeriesKey(payloadHash, period string) string {
	return hashKey("series", payloadHash, period)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", seriesHash, opts)
}
