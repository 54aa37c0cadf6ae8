package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/tourdesk/internal/domain/model"
)

// DecisionLog is an in-memory DecisionStore keyed by user id.
type DecisionLog struct {
	mu        sync.RWMutex
	decisions map[string]model.Decision
}

// NewDecisionLog creates an empty decision log.
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{decisions: make(map[string]model.Decision)}
}

// RecordDecision implements DecisionStore.
func (l *DecisionLog) RecordDecision(_ context.Context, d model.Decision) error {
	if d.UserID == "" || !d.Verdict.Valid() {
		return fmt.Errorf("%w: decision %+v", ErrInvalidInput, d)
	}
	l.mu.Lock()
	l.decisions[d.UserID] = d
	l.mu.Unlock()
	return nil
}

// Decision implements DecisionStore.
func (l *DecisionLog) Decision(_ context.Context, userID string) (model.Decision, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.decisions[userID]
	if !ok {
		return model.Decision{}, fmt.Errorf("%w: decision for user %q", ErrNotFound, userID)
	}
	return d, nil
}

// Count implements DecisionStore.
func (l *DecisionLog) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.decisions)
}
