// Package worker applies queued review decisions to the decision log.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/pkg/logger"
	"github.com/okian/tourdesk/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// Recorder persists a decision.
type Recorder interface {
	RecordDecision(ctx context.Context, d model.Decision) error
}

// Source is where workers read decisions from.
type Source interface {
	Dequeue() <-chan model.Decision
}

// Worker processes decisions until its source is drained.
type Worker interface {
	// Run blocks until the source channel closes or ctx is canceled.
	Run(ctx context.Context)

	// Done is closed when Run returns.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	source   Source
	recorder Recorder
	name     string

	onProcessed func()
	done        chan struct{}
	logger      logger.Logger
}

// NewInMemoryWorker creates a worker reading from source and writing to recorder.
func NewInMemoryWorker(source Source, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		recorder: recorder,
		name:     "worker",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	decisions := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-decisions:
			if !ok {
				return
			}
			if err := w.process(ctx, d); err != nil {
				w.logger.Error(ctx, "error applying decision", logger.Error(err))
			}
		}
	}
}

// Done implements Worker.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, d model.Decision) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
	}()

	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}
	if err := w.recorder.RecordDecision(ctx, d); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByType("decision_error", "high")
		return fmt.Errorf("record decision for %s: %w", d.UserID, err)
	}

	metrics.RecordDecisionRecorded(string(d.Verdict))
	w.logger.Debug(ctx, "decision recorded",
		logger.String("userID", d.UserID),
		logger.String("verdict", string(d.Verdict)),
	)
	if w.onProcessed != nil {
		w.onProcessed()
	}
	return nil
}

// Pool manages multiple workers over one source.
type Pool struct {
	workers   []*InMemoryWorker
	source    Source
	processed atomic.Int64
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers; non-positive means NumCPU.
func NewPool(workerCount int, source Source, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(source, recorder,
			WithName("worker-"+strconv.Itoa(i)),
			WithProcessedHook(func() { p.processed.Add(1) }),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many decisions the pool has applied.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Shutdown closes the source when it supports Close, then waits for workers
// to drain it or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", ctx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
