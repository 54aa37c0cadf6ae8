// Package queue holds review decisions between the HTTP handlers and the
// worker pool.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds d to the queue without blocking.
	// Returns ErrFull, ErrClosed or ErrCanceled when d was not enqueued.
	Enqueue(ctx context.Context, d model.Decision) error

	// Dequeue returns the channel decisions are delivered on.
	// The channel is closed once the queue is closed and drained.
	Dequeue() <-chan model.Decision

	// Len returns the number of pending decisions.
	Len() int

	// Close stops accepting decisions. Pending ones stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	decisions chan model.Decision
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.decisions = make(chan model.Decision, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d model.Decision) error {
	// The read lock keeps Close from closing the channel under a send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_canceled")
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	select {
	case q.decisions <- d:
		metrics.UpdateQueueSize(len(q.decisions))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan model.Decision {
	return q.decisions
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	size := len(q.decisions)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close implements Queue. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.decisions)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
