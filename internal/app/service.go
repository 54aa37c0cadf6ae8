// Package service wires the request store, the decision log and the review
// pipeline behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/tourdesk/internal/adapters/mq/queue"
	"github.com/okian/tourdesk/internal/adapters/mq/worker"
	repository "github.com/okian/tourdesk/internal/adapters/repository"
	"github.com/okian/tourdesk/internal/domain/dedupe"
	"github.com/okian/tourdesk/internal/domain/listing"
	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/internal/domain/types"
	"github.com/okian/tourdesk/pkg/logger"
	"github.com/okian/tourdesk/pkg/metrics"
)

const (
	defaultQueueSize = 1024
	stopTimeout      = 10 * time.Second
)

// Service implements the API dependencies for the registration desk.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	decisions repository.DecisionStore
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	workerCount int
	queueSize   int
	decisionTTL time.Duration
	seedData    bool

	started bool
	logger  logger.Logger
}

// New builds the service, its request store, the decision log and the
// deduper. These outlive Stop; the queue and workers are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		seedData:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		var storeOpts []repository.Option
		if s.seedData {
			storeOpts = append(storeOpts, repository.WithSeed(repository.SeedRequests()))
		}
		s.store = repository.NewMemoryStore(storeOpts...)
	}
	s.decisions = repository.NewDecisionLog()

	dedupeOpts := []dedupe.Option{}
	if s.decisionTTL > 0 {
		dedupeOpts = append(dedupeOpts, dedupe.WithTTL(s.decisionTTL))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupeOpts...)
	return s
}

// Start creates the review queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.decisions)
	// Workers stop when the queue closes, not when the caller's ctx ends.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "registration service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("decisionTTL", s.decisionTTL),
		logger.Int("records", s.store.Count(ctx)),
	)
	return nil
}

// Stop closes the review queue and waits for workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "review workers did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "registration service stopped",
		logger.Int64("decisionsApplied", s.pool.Processed()),
	)
}

// Submit appends a registration request.
func (s *Service) Submit(ctx context.Context, rec model.Request) (model.Request, error) {
	stored, err := s.store.Append(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return model.Request{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return model.Request{}, err
	}
	metrics.RecordRequestSubmitted()
	return stored, nil
}

// List returns the requested page of the search-filtered collection.
func (s *Service) List(ctx context.Context, q listing.Query) (types.Page, error) {
	records, total, err := s.store.List(ctx, q)
	if err != nil {
		return types.Page{}, err
	}
	return types.NewPage(records, total), nil
}

// Decide queues a review decision for userID. The first decision per user
// wins; later ones report duplicate=true and change nothing.
func (s *Service) Decide(ctx context.Context, userID string, verdict model.Verdict) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if !verdict.Valid() {
		return false, fmt.Errorf("%w: verdict %q", ErrInvalidInput, verdict)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if _, err := s.store.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return false, err
	}

	// The log is authoritative once a decision is applied; the deduper
	// covers decisions still in the queue.
	_, err := s.decisions.Decision(ctx, userID)
	applied := err == nil
	if !applied && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if applied || s.deduper.SeenAndRecord(ctx, userID) {
		metrics.RecordDecisionDuplicate()
		s.logger.Debug(ctx, "duplicate decision", logger.String("userID", userID))
		return true, nil
	}

	d := model.Decision{UserID: userID, Verdict: verdict, DecidedAt: time.Now().UTC()}
	if err := s.queue.Enqueue(ctx, d); err != nil {
		s.deduper.Unrecord(ctx, userID)
		switch {
		case errors.Is(err, queue.ErrFull):
			return false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			return false, fmt.Errorf("%w: %w", ErrNotStarted, err)
		default:
			return false, err
		}
	}

	metrics.RecordDecisionQueued(string(verdict))
	return false, nil
}

// Decision returns the recorded decision for userID.
func (s *Service) Decision(ctx context.Context, userID string) (types.DecisionView, error) {
	d, err := s.decisions.Decision(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.DecisionView{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return types.DecisionView{}, err
	}
	return types.NewDecisionView(d), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"records":     s.store.Count(ctx),
		"decisions":   s.decisions.Count(ctx),
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["decisionsApplied"] = s.pool.Processed()
	}
	stats["dedupeEntries"] = s.deduper.Size()
	return stats
}
