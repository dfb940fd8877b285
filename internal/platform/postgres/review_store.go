package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/platform/logger"
	"github.com/dkotenko/adboard/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db store.DBTX
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresReviewStore(db store.DBTX) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresReviewStore{db: db}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
// The foreign keys are the second line of defense: the service layer checks
// that the listing exists first, but a concurrent delete can still win.
// Returns store.ErrInvalidEntity when the listing or author no longer exists.
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	log := logger.FromContext(ctx)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during create",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return err
	}

	query := `
		INSERT INTO reviews (id, text, author_id, listing_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.Text,
		review.AuthorID,
		review.ListingID,
		review.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("review references non-existent listing or author",
				slog.String("listing_id", review.ListingID.String()),
				slog.String("author_id", review.AuthorID.String()))
			return store.ErrInvalidEntity
		}
		log.Error("failed to create review",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return MapError(err)
	}

	log.Debug("review created successfully",
		slog.String("review_id", review.ID.String()),
		slog.String("listing_id", review.ListingID.String()))
	return nil
}

// GetByID implements store.ReviewStore.GetByID
// Returns store.ErrReviewNotFound if the review does not exist.
func (s *PostgresReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, text, author_id, listing_id, created_at
		FROM reviews
		WHERE id = $1
	`

	var review domain.Review
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.Text,
		&review.AuthorID,
		&review.ListingID,
		&review.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrReviewNotFound
		}
		log.Error("failed to get review",
			slog.String("error", err.Error()),
			slog.String("review_id", id.String()))
		return nil, MapError(err)
	}

	return &review, nil
}

// List implements store.ReviewStore.List
// Results are ordered newest first. The returned count is the total number
// of rows matching the filter regardless of the page window.
func (s *PostgresReviewStore) List(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error) {
	log := logger.FromContext(ctx)

	where := `
		WHERE ($1::uuid IS NULL OR listing_id = $1)
		  AND ($2::uuid IS NULL OR author_id = $2)
	`
	var listingID, authorID any
	if filter.ListingID != uuid.Nil {
		listingID = filter.ListingID
	}
	if filter.AuthorID != uuid.Nil {
		authorID = filter.AuthorID
	}

	var total int64
	countQuery := `SELECT count(*) FROM reviews` + where
	if err := s.db.QueryRowContext(ctx, countQuery, listingID, authorID).Scan(&total); err != nil {
		log.Error("failed to count reviews", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT id, text, author_id, listing_id, created_at
		FROM reviews` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.QueryContext(ctx, query, listingID, authorID, page.Limit, page.Offset)
	if err != nil {
		log.Error("failed to list reviews", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0, page.Limit)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.Text,
			&review.AuthorID,
			&review.ListingID,
			&review.CreatedAt,
		); err != nil {
			log.Error("failed to scan review row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return reviews, total, nil
}

// Update implements store.ReviewStore.Update
// Author, listing and creation time are immutable; only the text is written.
// Returns store.ErrReviewNotFound if the review does not exist.
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	log := logger.FromContext(ctx)

	if err := review.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE reviews SET text = $1 WHERE id = $2`,
		review.Text,
		review.ID,
	)

	if err != nil {
		log.Error("failed to update review",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// Delete implements store.ReviewStore.Delete
// Returns store.ErrReviewNotFound if the review does not exist.
func (s *PostgresReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete review",
			slog.String("error", err.Error()),
			slog.String("review_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrReviewNotFound); err != nil {
		return err
	}

	log.Debug("review deleted", slog.String("review_id", id.String()))
	return nil
}

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx}
}
