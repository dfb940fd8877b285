package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/events"
	"github.com/dkotenko/adboard/internal/service/auth"
	"github.com/dkotenko/adboard/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTx runs the transactional function without a real transaction.
func stubTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// mockListingStore implements store.ListingStore with function fields.
type mockListingStore struct {
	CreateFn  func(ctx context.Context, listing *domain.Listing) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListFn    func(ctx context.Context, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error)
	UpdateFn  func(ctx context.Context, listing *domain.Listing) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	return m.CreateFn(ctx, listing)
}

func (m *mockListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockListingStore) List(ctx context.Context, filter store.ListingFilter, page store.Page) ([]*domain.Listing, int64, error) {
	return m.ListFn(ctx, filter, page)
}

func (m *mockListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	return m.UpdateFn(ctx, listing)
}

func (m *mockListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockListingStore) WithTx(_ *sql.Tx) store.ListingStore {
	return m
}

// mockReviewStore implements store.ReviewStore with function fields.
type mockReviewStore struct {
	CreateFn  func(ctx context.Context, review *domain.Review) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListFn    func(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error)
	UpdateFn  func(ctx context.Context, review *domain.Review) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	return m.CreateFn(ctx, review)
}

func (m *mockReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockReviewStore) List(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]*domain.Review, int64, error) {
	return m.ListFn(ctx, filter, page)
}

func (m *mockReviewStore) Update(ctx context.Context, review *domain.Review) error {
	return m.UpdateFn(ctx, review)
}

func (m *mockReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockReviewStore) WithTx(_ *sql.Tx) store.ReviewStore {
	return m
}

// mockUserStore implements store.UserStore with function fields.
type mockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeactivateFn func(ctx context.Context, id uuid.UUID) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.UpdateFn(ctx, user)
}

func (m *mockUserStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.DeactivateFn(ctx, id)
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}

// mockEmitter records emitted events.
type mockEmitter struct {
	emitted []*events.TaskRequestEvent
	err     error
}

func (m *mockEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	if m.err != nil {
		return m.err
	}
	m.emitted = append(m.emitted, event)
	return nil
}

// emitterFunc adapts a function to events.EventEmitter.
type emitterFunc func(ctx context.Context, event *events.TaskRequestEvent) error

func (f emitterFunc) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	return f(ctx, event)
}

// mockJWTService implements auth.JWTService with function fields.
type mockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateResetTokenFn   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateResetTokenFn   func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.GenerateTokenFn(ctx, userID)
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateTokenFn(ctx, tokenString)
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.GenerateRefreshTokenFn(ctx, userID)
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateRefreshTokenFn(ctx, tokenString)
}

func (m *mockJWTService) GenerateResetToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.GenerateResetTokenFn(ctx, userID)
}

func (m *mockJWTService) ValidateResetToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateResetTokenFn(ctx, tokenString)
}

// verifierFunc adapts a function to auth.PasswordVerifier.
type verifierFunc func(hashedPassword, password string) error

func (f verifierFunc) Compare(hashedPassword, password string) error {
	return f(hashedPassword, password)
}
