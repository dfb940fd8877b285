package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/adboard/internal/authz"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/store"
)

func newTestListingService(listingStore store.ListingStore) *listingServiceImpl {
	return &listingServiceImpl{
		listingStore: listingStore,
		logger:       discardLogger(),
		runTx:        stubTx,
	}
}

func authenticatedIdentity() authz.Identity {
	return authz.Identity{ID: uuid.New(), Authenticated: true}
}

func adminIdentity() authz.Identity {
	return authz.Identity{ID: uuid.New(), Authenticated: true, Administrator: true}
}

func TestListingServiceList(t *testing.T) {
	t.Run("open to anonymous callers", func(t *testing.T) {
		stored := []*domain.Listing{
			{ID: uuid.New(), Title: "Bike"},
			{ID: uuid.New(), Title: "Sofa"},
		}
		svc := newTestListingService(&mockListingStore{
			ListFn: func(_ context.Context, _ store.ListingFilter, _ store.Page) ([]*domain.Listing, int64, error) {
				return stored, 17, nil
			},
		})

		listings, total, err := svc.List(context.Background(), authz.Anonymous, store.ListingFilter{}, store.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, stored, listings)
		assert.Equal(t, int64(17), total)
	})

	t.Run("passes filter and page through", func(t *testing.T) {
		ownerID := uuid.New()
		var gotFilter store.ListingFilter
		var gotPage store.Page
		svc := newTestListingService(&mockListingStore{
			ListFn: func(_ context.Context, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error) {
				gotFilter = filter
				gotPage = page
				return nil, 0, nil
			},
		})

		_, _, err := svc.List(context.Background(), authz.Anonymous,
			store.ListingFilter{Title: "bike", OwnerID: ownerID},
			store.Page{Limit: 20, Offset: 40})
		require.NoError(t, err)
		assert.Equal(t, "bike", gotFilter.Title)
		assert.Equal(t, ownerID, gotFilter.OwnerID)
		assert.Equal(t, store.Page{Limit: 20, Offset: 40}, gotPage)
	})
}

func TestListingServiceGet(t *testing.T) {
	listing := &domain.Listing{ID: uuid.New(), Title: "Bike", OwnerID: uuid.New()}

	t.Run("requires authentication", func(t *testing.T) {
		storeCalled := false
		svc := newTestListingService(&mockListingStore{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Listing, error) {
				storeCalled = true
				return listing, nil
			},
		})

		_, err := svc.Get(context.Background(), authz.Anonymous, listing.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.False(t, storeCalled, "store must not be consulted before the request check passes")
	})

	t.Run("returns the listing to any authenticated caller", func(t *testing.T) {
		svc := newTestListingService(&mockListingStore{
			GetByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
				require.Equal(t, listing.ID, id)
				return listing, nil
			},
		})

		got, err := svc.Get(context.Background(), authenticatedIdentity(), listing.ID)
		require.NoError(t, err)
		assert.Equal(t, listing, got)
	})

	t.Run("maps missing listing to not found", func(t *testing.T) {
		svc := newTestListingService(&mockListingStore{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Listing, error) {
				return nil, store.ErrListingNotFound
			},
		})

		_, err := svc.Get(context.Background(), authenticatedIdentity(), uuid.New())
		assert.ErrorIs(t, err, ErrListingNotFound)
	})
}

func TestListingServiceCreate(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		svc := newTestListingService(&mockListingStore{})

		_, err := svc.Create(context.Background(), authz.Anonymous, CreateListingInput{Title: "Bike", Price: 100})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("persists a listing owned by the caller", func(t *testing.T) {
		identity := authenticatedIdentity()
		var saved *domain.Listing
		svc := newTestListingService(&mockListingStore{
			CreateFn: func(_ context.Context, l *domain.Listing) error {
				saved = l
				return nil
			},
		})

		listing, err := svc.Create(context.Background(), identity, CreateListingInput{
			Title:       "Mountain bike",
			Price:       25000,
			Description: "Barely used",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, saved, listing)
		assert.Equal(t, identity.ID, listing.OwnerID)
		assert.Equal(t, "Mountain bike", listing.Title)
		assert.Equal(t, int64(25000), listing.Price)
		assert.NotEqual(t, uuid.Nil, listing.ID)
		assert.False(t, listing.CreatedAt.IsZero())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := newTestListingService(&mockListingStore{})

		_, err := svc.Create(context.Background(), authenticatedIdentity(), CreateListingInput{Title: "", Price: 100})
		assert.ErrorIs(t, err, domain.ErrEmptyListingTitle)

		_, err = svc.Create(context.Background(), authenticatedIdentity(), CreateListingInput{Title: "Bike", Price: -1})
		assert.ErrorIs(t, err, domain.ErrNegativePrice)
	})
}

func TestListingServiceUpdate(t *testing.T) {
	owner := authenticatedIdentity()
	newTitle := "Updated title"
	newPrice := int64(999)

	makeStore := func(updated **domain.Listing) *mockListingStore {
		return &mockListingStore{
			GetByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
				return &domain.Listing{ID: id, Title: "Old title", Price: 100, OwnerID: owner.ID}, nil
			},
			UpdateFn: func(_ context.Context, l *domain.Listing) error {
				if updated != nil {
					*updated = l
				}
				return nil
			},
		}
	}

	tests := []struct {
		name     string
		identity authz.Identity
		wantErr  error
	}{
		{name: "anonymous", identity: authz.Anonymous, wantErr: domain.ErrUnauthenticated},
		{name: "stranger", identity: authenticatedIdentity(), wantErr: domain.ErrForbidden},
		{name: "owner", identity: owner},
		{name: "administrator", identity: adminIdentity()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var saved *domain.Listing
			svc := newTestListingService(makeStore(&saved))

			got, err := svc.Update(context.Background(), tc.identity, uuid.New(), UpdateListingInput{
				Title: &newTitle,
				Price: &newPrice,
			})

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, saved, "denied update must not reach the store")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, "Updated title", got.Title)
			assert.Equal(t, int64(999), got.Price)
		})
	}
}

func TestListingServiceUpdatePartial(t *testing.T) {
	owner := authenticatedIdentity()
	newPrice := int64(50)
	svc := newTestListingService(&mockListingStore{
		GetByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
			return &domain.Listing{ID: id, Title: "Keep me", Price: 100, Description: "Keep too", OwnerID: owner.ID}, nil
		},
		UpdateFn: func(_ context.Context, _ *domain.Listing) error { return nil },
	})

	got, err := svc.Update(context.Background(), owner, uuid.New(), UpdateListingInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Title)
	assert.Equal(t, "Keep too", got.Description)
	assert.Equal(t, int64(50), got.Price)
}

func TestListingServiceDelete(t *testing.T) {
	owner := authenticatedIdentity()

	tests := []struct {
		name     string
		identity authz.Identity
		wantErr  error
	}{
		{name: "anonymous", identity: authz.Anonymous, wantErr: domain.ErrUnauthenticated},
		{name: "stranger", identity: authenticatedIdentity(), wantErr: domain.ErrForbidden},
		{name: "owner", identity: owner},
		{name: "administrator", identity: adminIdentity()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			svc := newTestListingService(&mockListingStore{
				GetByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
					return &domain.Listing{ID: id, Title: "Bike", OwnerID: owner.ID}, nil
				},
				DeleteFn: func(_ context.Context, _ uuid.UUID) error {
					deleted = true
					return nil
				},
			})

			err := svc.Delete(context.Background(), tc.identity, uuid.New())

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.False(t, deleted)
				return
			}
			require.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestListingServiceDeleteNotFound(t *testing.T) {
	svc := newTestListingService(&mockListingStore{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Listing, error) {
			return nil, store.ErrListingNotFound
		},
	})

	err := svc.Delete(context.Background(), authenticatedIdentity(), uuid.New())
	assert.ErrorIs(t, err, ErrListingNotFound)
}
