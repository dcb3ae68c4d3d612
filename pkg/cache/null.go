package cache

import (
	"context"
	"time"
)

// NullCache satisfies [Cache] without keeping anything, so every lookup is a
// miss and every run recomputes. The CLI picks it for --no-cache and for the
// declutter command, whose output is never reused.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
