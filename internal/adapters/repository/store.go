// Package repository holds the in-memory registration request collection
// and the review decision log.
package repository

import (
	"context"

	"github.com/okian/tourdesk/internal/domain/listing"
	"github.com/okian/tourdesk/internal/domain/model"
)

// Store provides access to the registration request collection.
type Store interface {
	// Append adds rec to the end of the collection. ID and CreatedAt are
	// assigned when empty; the stored record is returned.
	Append(ctx context.Context, rec model.Request) (model.Request, error)

	// List filters by q.Search and returns the page selected by q plus the
	// number of records that matched the search.
	List(ctx context.Context, q listing.Query) ([]model.Request, int, error)

	// FindByUserID returns the first record submitted by userID.
	// Returns ErrNotFound if there is none.
	FindByUserID(ctx context.Context, userID string) (model.Request, error)

	// Count returns the size of the unfiltered collection.
	Count(ctx context.Context) int
}

// DecisionStore keeps the latest review decision per user.
type DecisionStore interface {
	// RecordDecision stores d, replacing any earlier decision for d.UserID.
	RecordDecision(ctx context.Context, d model.Decision) error

	// Decision returns the decision for userID or ErrNotFound.
	Decision(ctx context.Context, userID string) (model.Decision, error)

	// Count returns the number of users with a decision.
	Count(ctx context.Context) int
}
