// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be retried. Callers use it to roll back
	// a mark when the work it guarded could not be handed off.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of keys currently tracked.
	Size() int64
}

// cacheDeduper keeps keys in a go-cache instance. A key lives until its TTL
// passes; with no TTL it lives for the life of the process.
type cacheDeduper struct {
	cache           *gocache.Cache
	ttl             time.Duration
	cleanupInterval time.Duration
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &cacheDeduper{}
	for _, opt := range opts {
		opt(d)
	}

	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if d.ttl > 0 {
		expiration = d.ttl
		cleanup = d.cleanupInterval
		if cleanup <= 0 {
			cleanup = d.ttl
		}
	}
	d.cache = gocache.New(expiration, cleanup)
	return d
}

func (d *cacheDeduper) SeenAndRecord(_ context.Context, id string) bool {
	// Add fails when a live item already exists; expired items are replaced.
	return d.cache.Add(id, struct{}{}, gocache.DefaultExpiration) != nil
}

func (d *cacheDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Delete(id)
}

// Size counts tracked keys, including expired ones the janitor has not yet removed.
func (d *cacheDeduper) Size() int64 {
	return int64(d.cache.ItemCount())
}
