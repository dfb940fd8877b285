package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Review
var (
	ErrEmptyReviewID        = errors.New("review ID cannot be empty")
	ErrEmptyReviewAuthorID  = errors.New("review author ID cannot be empty")
	ErrEmptyReviewListingID = errors.New("review listing ID cannot be empty")
	ErrEmptyReviewText      = errors.New("review text cannot be empty")
)

// Review represents a comment attached to exactly one listing. Both the
// author and the parent listing are fixed at creation time; there is no
// reassignment operation. A listing's owner may review their own listing.
type Review struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	AuthorID  uuid.UUID `json:"author_id"`
	ListingID uuid.UUID `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview creates a new Review by the given author against the given
// listing. It generates a new UUID for the review ID and sets the creation
// timestamp, which is assigned exactly once and never updated thereafter.
// Returns an error if validation fails.
func NewReview(authorID, listingID uuid.UUID, text string) (*Review, error) {
	review := &Review{
		ID:        uuid.New(),
		Text:      text,
		AuthorID:  authorID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
// Returns an error if any field fails validation.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReviewID
	}

	if r.AuthorID == uuid.Nil {
		return ErrEmptyReviewAuthorID
	}

	if r.ListingID == uuid.Nil {
		return ErrEmptyReviewListingID
	}

	if r.Text == "" {
		return ErrEmptyReviewText
	}

	return nil
}
