package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/tourdesk/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSeed preloads records in order. Records without ids get generated ones.
func WithSeed(records []model.Request) Option {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, records...)
	}
}

// WithIDGenerator overrides how record ids are produced.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func defaultID() string {
	return uuid.NewString()
}
