package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Listing
var (
	ErrEmptyListingID      = errors.New("listing ID cannot be empty")
	ErrEmptyListingOwnerID = errors.New("listing owner ID cannot be empty")
	ErrEmptyListingTitle   = errors.New("listing title cannot be empty")
	ErrListingTitleTooLong = errors.New("listing title must be at most 255 characters")
	ErrNegativePrice       = errors.New("listing price cannot be negative")
)

// Listing represents a for-sale item posting. Ownership is exclusive and
// immutable after creation; deleting the owner cascades to their listings.
type Listing struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewListing creates a new Listing owned by the given user.
// It generates a new UUID for the listing ID and sets the creation timestamp,
// which is assigned exactly once and never updated thereafter.
// Returns an error if validation fails.
func NewListing(ownerID uuid.UUID, title string, price int64, description string) (*Listing, error) {
	listing := &Listing{
		ID:          uuid.New(),
		Title:       title,
		Price:       price,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := listing.Validate(); err != nil {
		return nil, err
	}

	return listing, nil
}

// Validate checks if the Listing has valid data.
// Returns an error if any field fails validation.
func (l *Listing) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyListingID
	}

	if l.OwnerID == uuid.Nil {
		return ErrEmptyListingOwnerID
	}

	if l.Title == "" {
		return ErrEmptyListingTitle
	}

	if len(l.Title) > 255 {
		return ErrListingTitleTooLong
	}

	if l.Price < 0 {
		return ErrNegativePrice
	}

	return nil
}
