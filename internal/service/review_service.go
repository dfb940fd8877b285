package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/authz"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/store"
)

// ReviewService provides review operations with the authorization policy
// applied. Every operation requires authentication, including reads.
type ReviewService interface {
	// List returns a page of reviews plus the total match count.
	List(ctx context.Context, identity authz.Identity, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error)

	// ListForListing returns reviews of one listing. The listing is
	// resolved first: a missing parent is a not-found result even for
	// anonymous callers, before any policy check runs.
	ListForListing(ctx context.Context, identity authz.Identity, listingID uuid.UUID, page store.Page) ([]*domain.Review, int64, error)

	// Get returns a single review.
	Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Review, error)

	// Create persists a new review on the given listing, authored by the
	// caller, and enqueues the owner notification after the insert commits.
	// Notification enqueue failure never fails the creation.
	Create(ctx context.Context, identity authz.Identity, listingID uuid.UUID, text string) (*domain.Review, error)

	// Update replaces the review text. Author or administrator only.
	Update(ctx context.Context, identity authz.Identity, id uuid.UUID, text string) (*domain.Review, error)

	// Delete removes a review. Author or administrator only.
	Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error
}

// reviewServiceImpl implements the ReviewService interface
type reviewServiceImpl struct {
	reviewStore  store.ReviewStore
	listingStore store.ListingStore
	userStore    store.UserStore
	dispatcher   *NotificationDispatcher
	logger       *slog.Logger
	runTx        func(ctx context.Context, fn store.TxFn) error // injectable for testing
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	db *sql.DB,
	reviewStore store.ReviewStore,
	listingStore store.ListingStore,
	userStore store.UserStore,
	dispatcher *NotificationDispatcher,
	logger *slog.Logger,
) (ReviewService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if reviewStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "reviewStore cannot be nil"}
	}
	if listingStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "listingStore cannot be nil"}
	}
	if userStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		reviewStore:  reviewStore,
		listingStore: listingStore,
		userStore:    userStore,
		dispatcher:   dispatcher,
		logger:       logger.With("component", "review_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// List implements ReviewService.List
func (s *reviewServiceImpl) List(ctx context.Context, identity authz.Identity, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error) {
	if err := denied(authz.CheckReviewRequest(identity, authz.OpList)); err != nil {
		return nil, 0, err
	}

	reviews, total, err := s.reviewStore.List(ctx, filter, page)
	if err != nil {
		return nil, 0, NewServiceError("list_reviews", "failed to list reviews", err)
	}
	return reviews, total, nil
}

// ListForListing implements ReviewService.ListForListing
func (s *reviewServiceImpl) ListForListing(ctx context.Context, identity authz.Identity, listingID uuid.UUID, page store.Page) ([]*domain.Review, int64, error) {
	// Parent resolution comes first: a missing listing is 404 regardless
	// of who asks.
	if _, err := s.listingStore.GetByID(ctx, listingID); err != nil {
		return nil, 0, NewServiceError("list_listing_reviews", "failed to resolve listing", err)
	}

	if err := denied(authz.CheckReviewRequest(identity, authz.OpList)); err != nil {
		return nil, 0, err
	}

	reviews, total, err := s.reviewStore.List(ctx, store.ReviewFilter{ListingID: listingID}, page)
	if err != nil {
		return nil, 0, NewServiceError("list_listing_reviews", "failed to list reviews", err)
	}
	return reviews, total, nil
}

// Get implements ReviewService.Get
func (s *reviewServiceImpl) Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Review, error) {
	if err := denied(authz.CheckReviewRequest(identity, authz.OpRetrieve)); err != nil {
		return nil, err
	}

	review, err := s.reviewStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_review", "failed to get review", err)
	}

	if err := denied(authz.CheckReview(identity, authz.OpRetrieve, review)); err != nil {
		return nil, err
	}
	return review, nil
}

// Create implements ReviewService.Create
// Ordering is load-bearing: parent resolved first (404 before policy), then
// the request-level auth check, then the insert transaction, and only after
// commit the notification dispatch. A dispatch failure is logged and
// swallowed; the review stays created.
func (s *reviewServiceImpl) Create(ctx context.Context, identity authz.Identity, listingID uuid.UUID, text string) (*domain.Review, error) {
	listing, err := s.listingStore.GetByID(ctx, listingID)
	if err != nil {
		return nil, NewServiceError("create_review", "failed to resolve listing", err)
	}

	if err := denied(authz.CheckReviewRequest(identity, authz.OpCreate)); err != nil {
		return nil, err
	}

	review, err := domain.NewReview(identity.ID, listingID, text)
	if err != nil {
		return nil, NewServiceError("create_review", "invalid review", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.reviewStore.WithTx(tx).Create(ctx, review)
	})
	if err != nil {
		return nil, NewServiceError("create_review", "failed to save review", err)
	}

	s.logger.Info("review created",
		"review_id", review.ID,
		"listing_id", listingID,
		"author_id", identity.ID)

	s.notifyOwner(ctx, listing, review)

	return review, nil
}

// notifyOwner composes and enqueues the owner notification. Best effort:
// any failure here is logged, never surfaced to the creating request.
func (s *reviewServiceImpl) notifyOwner(ctx context.Context, listing *domain.Listing, review *domain.Review) {
	owner, err := s.userStore.GetByID(ctx, listing.OwnerID)
	if err != nil {
		s.logger.Error("failed to load listing owner for notification",
			"error", err,
			"listing_id", listing.ID,
			"review_id", review.ID)
		return
	}

	author, err := s.userStore.GetByID(ctx, review.AuthorID)
	if err != nil {
		s.logger.Error("failed to load review author for notification",
			"error", err,
			"review_id", review.ID)
		return
	}

	if err := s.dispatcher.ReviewCreated(ctx, owner, author, listing, review); err != nil {
		s.logger.Error("failed to enqueue review notification",
			"error", err,
			"review_id", review.ID,
			"listing_id", listing.ID)
	}
}

// Update implements ReviewService.Update
func (s *reviewServiceImpl) Update(ctx context.Context, identity authz.Identity, id uuid.UUID, text string) (*domain.Review, error) {
	if err := denied(authz.CheckReviewRequest(identity, authz.OpUpdate)); err != nil {
		return nil, err
	}

	var updated *domain.Review
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.reviewStore.WithTx(tx)

		review, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := denied(authz.CheckReview(identity, authz.OpUpdate, review)); err != nil {
			return err
		}

		review.Text = text
		if err := txStore.Update(ctx, review); err != nil {
			return err
		}
		updated = review
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_review", "failed to update review", err)
	}

	s.logger.Info("review updated",
		"review_id", id,
		"actor_id", identity.ID)
	return updated, nil
}

// Delete implements ReviewService.Delete
func (s *reviewServiceImpl) Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error {
	if err := denied(authz.CheckReviewRequest(identity, authz.OpDelete)); err != nil {
		return err
	}

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.reviewStore.WithTx(tx)

		review, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := denied(authz.CheckReview(identity, authz.OpDelete, review)); err != nil {
			return err
		}

		return txStore.Delete(ctx, id)
	})
	if err != nil {
		return NewServiceError("delete_review", "failed to delete review", err)
	}

	s.logger.Info("review deleted",
		"review_id", id,
		"actor_id", identity.ID)
	return nil
}
