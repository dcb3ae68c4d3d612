// Package cache stores pipeline intermediates and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: entries under ~/.cache/celltower/pipeline (CLI default)
//   - [RedisCache]: a shared Redis instance, for `serve` deployments
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys come from a [Keyer]. Datasets are keyed by the hash of their input
// document, artifacts by the hash of the decluttered dataset plus every
// option that changes the rendered bytes.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	TTLDataset  = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// DefaultDir returns ~/.cache/celltower/pipeline, honoring XDG_CACHE_HOME.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "celltower", "pipeline"), nil
}
