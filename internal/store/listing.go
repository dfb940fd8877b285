package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
)

// ListingFilter narrows a listing query. Zero values mean "no constraint".
type ListingFilter struct {
	// Title matches listings whose title contains the given substring,
	// case-insensitively.
	Title string

	// OwnerID restricts results to listings owned by the given user.
	OwnerID uuid.UUID
}

// ListingStore defines the interface for listing data persistence.
type ListingStore interface {
	// Create saves a new listing to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the owner does not exist (foreign key violation).
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique ID.
	// Returns ErrListingNotFound if the listing does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// List retrieves listings matching the filter, ordered most-recent-first
	// by creation timestamp, windowed by the page. The returned count is the
	// total number of matching rows ignoring the page window.
	List(ctx context.Context, filter ListingFilter, page Page) ([]*domain.Listing, int64, error)

	// Update saves changes to an existing listing. The owner and creation
	// timestamp are immutable and never written.
	// Returns ErrListingNotFound if the listing does not exist.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing, cascading to its reviews.
	// Returns ErrListingNotFound if the listing does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ListingStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ListingStore
}
