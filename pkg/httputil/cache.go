package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by Get when an entry exists but is older than the
// TTL. The stale data is left on disk until overwritten.
var ErrExpired = errors.New("cache entry expired")

// DefaultTTL is how long downloaded datasets are reused.
const DefaultTTL = 24 * time.Hour

// Cache stores payloads as files named by the SHA-256 of their key.
// Freshness is judged from the file modification time; a TTL of 0 never
// expires. A Cache is not safe for concurrent writes to the same key.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a cache in dir, or in ~/.cache/celltower/http when dir
// is empty. The directory is created if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "celltower", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// GetBytes returns the raw payload stored under key.
// A miss is (nil, false, nil); a stale entry is (nil, false, ErrExpired).
func (c *Cache) GetBytes(key string) ([]byte, bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetBytes stores a raw payload, refreshing the entry's age.
func (c *Cache) SetBytes(key string, data []byte) error {
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Get decodes the JSON entry stored under key into v.
func (c *Cache) Get(key string, v any) (bool, error) {
	data, ok, err := c.GetBytes(key)
	if !ok || err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set stores v as JSON.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetBytes(key, data)
}

// Namespace returns a view of the cache whose keys are prefixed.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
