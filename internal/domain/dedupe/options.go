// Package dedupe defines the interface for idempotency tracking.
package dedupe

import "time"

// Option applies a configuration option to the deduper.
type Option func(*cacheDeduper)

// WithTTL expires recorded keys after ttl. Zero or negative keeps keys forever.
func WithTTL(ttl time.Duration) Option {
	return func(d *cacheDeduper) {
		d.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired keys are purged. Defaults to the TTL.
func WithCleanupInterval(interval time.Duration) Option {
	return func(d *cacheDeduper) {
		if interval > 0 {
			d.cleanupInterval = interval
		}
	}
}
