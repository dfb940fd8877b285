package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/authz"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/service"
	"github.com/dkotenko/adboard/internal/service/auth"
	"github.com/dkotenko/adboard/internal/store"
)

// mockListingService implements service.ListingService with function fields.
type mockListingService struct {
	ListFn   func(ctx context.Context, identity authz.Identity, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error)
	GetFn    func(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Listing, error)
	CreateFn func(ctx context.Context, identity authz.Identity, input service.CreateListingInput) (*domain.Listing, error)
	UpdateFn func(ctx context.Context, identity authz.Identity, id uuid.UUID, input service.UpdateListingInput) (*domain.Listing, error)
	DeleteFn func(ctx context.Context, identity authz.Identity, id uuid.UUID) error
}

func (m *mockListingService) List(ctx context.Context, identity authz.Identity, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error) {
	return m.ListFn(ctx, identity, filter, page)
}

func (m *mockListingService) Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Listing, error) {
	return m.GetFn(ctx, identity, id)
}

func (m *mockListingService) Create(ctx context.Context, identity authz.Identity, input service.CreateListingInput) (*domain.Listing, error) {
	return m.CreateFn(ctx, identity, input)
}

func (m *mockListingService) Update(ctx context.Context, identity authz.Identity, id uuid.UUID, input service.UpdateListingInput) (*domain.Listing, error) {
	return m.UpdateFn(ctx, identity, id, input)
}

func (m *mockListingService) Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error {
	return m.DeleteFn(ctx, identity, id)
}

// mockReviewService implements service.ReviewService with function fields.
type mockReviewService struct {
	ListFn           func(ctx context.Context, identity authz.Identity, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error)
	ListForListingFn func(ctx context.Context, identity authz.Identity, listingID uuid.UUID, page store.Page) ([]*domain.Review, int64, error)
	GetFn            func(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Review, error)
	CreateFn         func(ctx context.Context, identity authz.Identity, listingID uuid.UUID, text string) (*domain.Review, error)
	UpdateFn         func(ctx context.Context, identity authz.Identity, id uuid.UUID, text string) (*domain.Review, error)
	DeleteFn         func(ctx context.Context, identity authz.Identity, id uuid.UUID) error
}

func (m *mockReviewService) List(ctx context.Context, identity authz.Identity, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error) {
	return m.ListFn(ctx, identity, filter, page)
}

func (m *mockReviewService) ListForListing(ctx context.Context, identity authz.Identity, listingID uuid.UUID, page store.Page) ([]*domain.Review, int64, error) {
	return m.ListForListingFn(ctx, identity, listingID, page)
}

func (m *mockReviewService) Get(ctx context.Context, identity authz.Identity, id uuid.UUID) (*domain.Review, error) {
	return m.GetFn(ctx, identity, id)
}

func (m *mockReviewService) Create(ctx context.Context, identity authz.Identity, listingID uuid.UUID, text string) (*domain.Review, error) {
	return m.CreateFn(ctx, identity, listingID, text)
}

func (m *mockReviewService) Update(ctx context.Context, identity authz.Identity, id uuid.UUID, text string) (*domain.Review, error) {
	return m.UpdateFn(ctx, identity, id, text)
}

func (m *mockReviewService) Delete(ctx context.Context, identity authz.Identity, id uuid.UUID) error {
	return m.DeleteFn(ctx, identity, id)
}

// mockUserService implements service.UserService with function fields.
type mockUserService struct {
	RegisterFn             func(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	AuthenticateFn         func(ctx context.Context, email, password string) (*domain.User, error)
	GetFn                  func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfileFn        func(ctx context.Context, id uuid.UUID, input service.UpdateProfileInput) (*domain.User, error)
	DeactivateFn           func(ctx context.Context, id uuid.UUID) error
	RequestPasswordResetFn func(ctx context.Context, email string) error
	ConfirmPasswordResetFn func(ctx context.Context, token, newPassword string) error
	GrantAdminFn           func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	return m.RegisterFn(ctx, input)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return m.AuthenticateFn(ctx, email, password)
}

func (m *mockUserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetFn(ctx, id)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, input service.UpdateProfileInput) (*domain.User, error) {
	return m.UpdateProfileFn(ctx, id, input)
}

func (m *mockUserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.DeactivateFn(ctx, id)
}

func (m *mockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.RequestPasswordResetFn(ctx, email)
}

func (m *mockUserService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return m.ConfirmPasswordResetFn(ctx, token, newPassword)
}

func (m *mockUserService) GrantAdmin(ctx context.Context, email string) (*domain.User, error) {
	return m.GrantAdminFn(ctx, email)
}

// mockJWTService implements auth.JWTService. Unset function fields return
// canned success values.
type mockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return "access-token", nil
}

func (m *mockJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return "refresh-token", nil
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return nil, auth.ErrInvalidRefreshToken
}

func (m *mockJWTService) GenerateResetToken(_ context.Context, _ uuid.UUID) (string, error) {
	return "reset-token", nil
}

func (m *mockJWTService) ValidateResetToken(_ context.Context, _ string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

// mockDenylist implements RefreshTokenDenylist in memory.
type mockDenylist struct {
	revoked   map[string]time.Time
	revokeErr error
	checkErr  error
}

func newMockDenylist() *mockDenylist {
	return &mockDenylist{revoked: make(map[string]time.Time)}
}

func (m *mockDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *mockDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}
