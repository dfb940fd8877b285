package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/authz"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/metrics"
	"github.com/dkotenko/adboard/internal/store"
)

// CreateListingInput carries the caller-supplied fields for a new listing.
type CreateListingInput struct {
	Title       string
	Price       int64
	Description string
}

// UpdateListingInput carries the mutable listing fields. Nil pointers leave
// the field untouched, which is what makes PATCH work.
type UpdateListingInput struct {
	Title       *string
	Price       *int64
	Description *string
}

// ListingService provides listing operations with the authorization policy
// applied. Handlers never touch the store directly.
type ListingService interface {
	// List returns a page of listings plus the total match count.
	// Open to anonymous callers.
	List(ctx context.Context, identity authz.Identity, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error)

	// Get returns a single listing. Requires authentication.
	Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Listing, error)

	// Create persists a new listing owned by the caller.
	Create(ctx context.Context, identity authz.Identity, input CreateListingInput) (*domain.Listing, error)

	// Update applies the given changes. Owner or administrator only.
	Update(ctx context.Context, identity authz.Identity, id uuid.UUID, input UpdateListingInput) (*domain.Listing, error)

	// Delete removes a listing and, by cascade, its reviews. Owner or
	// administrator only.
	Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error
}

// listingServiceImpl implements the ListingService interface
type listingServiceImpl struct {
	listingStore store.ListingStore
	logger       *slog.Logger
	runTx        func(ctx context.Context, fn store.TxFn) error // injectable for testing
}

// NewListingService creates a new ListingService.
func NewListingService(db *sql.DB, listingStore store.ListingStore, logger *slog.Logger) (ListingService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if listingStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "listingStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &listingServiceImpl{
		listingStore: listingStore,
		logger:       logger.With("component", "listing_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// denied converts a policy decision into an error, recording the denial.
// Returns nil when the decision allows the operation.
func denied(d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == domain.ErrUnauthenticated {
		metrics.IncAuthzDenial("unauthenticated")
	} else {
		metrics.IncAuthzDenial("forbidden")
	}
	return d.Reason
}

// List implements ListingService.List
func (s *listingServiceImpl) List(ctx context.Context, identity authz.Identity, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error) {
	if err := denied(authz.CheckListingRequest(identity, authz.OpList)); err != nil {
		return nil, 0, err
	}

	listings, total, err := s.listingStore.List(ctx, filter, page)
	if err != nil {
		return nil, 0, NewServiceError("list_listings", "failed to list listings", err)
	}
	return listings, total, nil
}

// Get implements ListingService.Get
func (s *listingServiceImpl) Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Listing, error) {
	if err := denied(authz.CheckListingRequest(identity, authz.OpRetrieve)); err != nil {
		return nil, err
	}

	listing, err := s.listingStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_listing", "failed to get listing", err)
	}

	if err := denied(authz.CheckListing(identity, authz.OpRetrieve, listing)); err != nil {
		return nil, err
	}
	return listing, nil
}

// Create implements ListingService.Create
func (s *listingServiceImpl) Create(ctx context.Context, identity authz.Identity, input CreateListingInput) (*domain.Listing, error) {
	if err := denied(authz.CheckListingRequest(identity, authz.OpCreate)); err != nil {
		return nil, err
	}

	listing, err := domain.NewListing(identity.ID, input.Title, input.Price, input.Description)
	if err != nil {
		return nil, NewServiceError("create_listing", "invalid listing", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.listingStore.WithTx(tx).Create(ctx, listing)
	})
	if err != nil {
		return nil, NewServiceError("create_listing", "failed to save listing", err)
	}

	s.logger.Info("listing created",
		"listing_id", listing.ID,
		"owner_id", identity.ID)
	return listing, nil
}

// Update implements ListingService.Update
// The load and the write share one transaction so a concurrent delete
// cannot slip between the policy check and the update.
func (s *listingServiceImpl) Update(ctx context.Context, identity authz.Identity, id uuid.UUID, input UpdateListingInput) (*domain.Listing, error) {
	if err := denied(authz.CheckListingRequest(identity, authz.OpUpdate)); err != nil {
		return nil, err
	}

	var updated *domain.Listing
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.listingStore.WithTx(tx)

		listing, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := denied(authz.CheckListing(identity, authz.OpUpdate, listing)); err != nil {
			return err
		}

		if input.Title != nil {
			listing.Title = *input.Title
		}
		if input.Price != nil {
			listing.Price = *input.Price
		}
		if input.Description != nil {
			listing.Description = *input.Description
		}

		if err := txStore.Update(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_listing", "failed to update listing", err)
	}

	s.logger.Info("listing updated",
		"listing_id", id,
		"actor_id", identity.ID)
	return updated, nil
}

// Delete implements ListingService.Delete
func (s *listingServiceImpl) Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error {
	if err := denied(authz.CheckListingRequest(identity, authz.OpDelete)); err != nil {
		return err
	}

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.listingStore.WithTx(tx)

		listing, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := denied(authz.CheckListing(identity, authz.OpDelete, listing)); err != nil {
			return err
		}

		return txStore.Delete(ctx, id)
	})
	if err != nil {
		return NewServiceError("delete_listing", "failed to delete listing", err)
	}

	s.logger.Info("listing deleted",
		"listing_id", id,
		"actor_id", identity.ID)
	return nil
}
