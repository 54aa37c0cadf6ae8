package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/tourdesk/internal/domain/listing"
	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// MemoryStore is the process-owned request collection. Appends take the
// write lock; listings copy their page out under the read lock.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.Request
	byUser  map[string]int // user id -> index of that user's first record

	seed  []model.Request
	newID func() string
	now   func() time.Time
}

// NewMemoryStore creates a store, applying options and loading any seed.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byUser: make(map[string]int),
		newID:  defaultID,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.records = make([]model.Request, 0, len(s.seed))
	for _, rec := range s.seed {
		s.appendLocked(rec)
	}
	s.seed = nil
	metrics.UpdateRequestsStored(len(s.records))
	return s
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, rec model.Request) (model.Request, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return model.Request{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	stored := s.appendLocked(rec)
	n := len(s.records)
	s.mu.Unlock()

	metrics.UpdateRequestsStored(n)
	return stored, nil
}

func (s *MemoryStore) appendLocked(rec model.Request) model.Request {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.UserID == "" {
		rec.UserID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if _, ok := s.byUser[rec.UserID]; !ok {
		s.byUser[rec.UserID] = len(s.records)
	}
	s.records = append(s.records, rec)
	return rec
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, q listing.Query) ([]model.Request, int, error) {
	start := time.Now()

	s.mu.RLock()
	page, total := listing.Apply(s.records, q)
	s.mu.RUnlock()

	metrics.RecordListQuery(float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond, len(page))
	return page, total, nil
}

// FindByUserID implements Store.
func (s *MemoryStore) FindByUserID(_ context.Context, userID string) (model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byUser[userID]
	if !ok {
		return model.Request{}, fmt.Errorf("%w: request for user %q", ErrNotFound, userID)
	}
	return s.records[idx], nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
