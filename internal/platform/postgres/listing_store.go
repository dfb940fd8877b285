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

// PostgresListingStore implements the store.ListingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresListingStore struct {
	db store.DBTX
}

// NewPostgresListingStore creates a new PostgreSQL implementation of the
// ListingStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresListingStore(db store.DBTX) *PostgresListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresListingStore{db: db}
}

// Ensure PostgresListingStore implements store.ListingStore interface
var _ store.ListingStore = (*PostgresListingStore)(nil)

// Create implements store.ListingStore.Create
// Returns store.ErrInvalidEntity when the owner does not exist.
func (s *PostgresListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContext(ctx)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during create",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return err
	}

	query := `
		INSERT INTO listings (id, title, price, description, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		listing.ID,
		listing.Title,
		listing.Price,
		listing.Description,
		listing.OwnerID,
		listing.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("listing references non-existent owner",
				slog.String("owner_id", listing.OwnerID.String()))
			return store.ErrInvalidEntity
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}

	log.Debug("listing created successfully",
		slog.String("listing_id", listing.ID.String()),
		slog.String("owner_id", listing.OwnerID.String()))
	return nil
}

// GetByID implements store.ListingStore.GetByID
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, title, price, description, owner_id, created_at
		FROM listings
		WHERE id = $1
	`

	var listing domain.Listing
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.Title,
		&listing.Price,
		&listing.Description,
		&listing.OwnerID,
		&listing.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrListingNotFound
		}
		log.Error("failed to get listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return nil, MapError(err)
	}

	return &listing, nil
}

// List implements store.ListingStore.List
// Results are ordered newest first. The returned count is the total number
// of rows matching the filter regardless of the page window.
func (s *PostgresListingStore) List(ctx context.Context, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error) {
	log := logger.FromContext(ctx)

	// Filters are optional; empty/zero values match everything.
	where := `
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2::uuid IS NULL OR owner_id = $2)
	`
	var ownerID any
	if filter.OwnerID != uuid.Nil {
		ownerID = filter.OwnerID
	}

	var total int64
	countQuery := `SELECT count(*) FROM listings` + where
	if err := s.db.QueryRowContext(ctx, countQuery, filter.Title, ownerID).Scan(&total); err != nil {
		log.Error("failed to count listings", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT id, title, price, description, owner_id, created_at
		FROM listings` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.db.QueryContext(ctx, query, filter.Title, ownerID, page.Limit, page.Offset)
	if err != nil {
		log.Error("failed to list listings", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer rows.Close()

	listings := make([]*domain.Listing, 0, page.Limit)
	for rows.Next() {
		var listing domain.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.Title,
			&listing.Price,
			&listing.Description,
			&listing.OwnerID,
			&listing.CreatedAt,
		); err != nil {
			log.Error("failed to scan listing row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		listings = append(listings, &listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return listings, total, nil
}

// Update implements store.ListingStore.Update
// Owner and creation time are immutable; only content fields are written.
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContext(ctx)

	if err := listing.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE listings
		SET title = $1, price = $2, description = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		listing.Title,
		listing.Price,
		listing.Description,
		listing.ID,
	)

	if err != nil {
		log.Error("failed to update listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrListingNotFound)
}

// Delete implements store.ListingStore.Delete
// Reviews of the listing are removed by the database cascade.
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *PostgresListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Debug("listing deleted", slog.String("listing_id", id.String()))
	return nil
}

// WithTx implements store.ListingStore.WithTx
func (s *PostgresListingStore) WithTx(tx *sql.Tx) store.ListingStore {
	return &PostgresListingStore{db: tx}
}
