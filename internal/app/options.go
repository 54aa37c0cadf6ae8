package service

import (
	"time"

	repository "github.com/okian/tourdesk/internal/adapters/repository"
	"github.com/okian/tourdesk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of review workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the review queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDecisionTTL bounds how long a decided user id is remembered for
// duplicate detection. Zero keeps ids forever.
func WithDecisionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.decisionTTL = ttl
		}
	}
}

// WithSeedData controls whether the demo requests are loaded.
func WithSeedData(enabled bool) Option {
	return func(s *Service) {
		s.seedData = enabled
	}
}

// WithStore replaces the request store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
