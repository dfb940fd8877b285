package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
)

// ReviewFilter narrows a review query. Zero values mean "no constraint".
type ReviewFilter struct {
	// ListingID restricts results to reviews on the given listing.
	ListingID uuid.UUID

	// AuthorID restricts results to reviews written by the given user.
	AuthorID uuid.UUID
}

// ReviewStore defines the interface for review data persistence.
type ReviewStore interface {
	// Create saves a new review to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the author or the parent listing does not
	// exist (foreign key violation). Callers are expected to have resolved
	// the parent listing beforehand; the constraint is a second line of defense.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique ID.
	// Returns ErrReviewNotFound if the review does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// List retrieves reviews matching the filter, ordered most-recent-first
	// by creation timestamp, windowed by the page. The returned count is the
	// total number of matching rows ignoring the page window.
	List(ctx context.Context, filter ReviewFilter, page Page) ([]*domain.Review, int64, error)

	// Update saves changes to an existing review. The author, parent listing
	// and creation timestamp are immutable and never written.
	// Returns ErrReviewNotFound if the review does not exist.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	// Returns ErrReviewNotFound if the review does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
