package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
)

// Common request/response structures

// PaginatedResponse is the envelope for every collection endpoint: the total
// number of matches plus the current page of results.
type PaginatedResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
	Phone     string `json:"phone"      validate:"max=32"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest defines the payload for the logout endpoint. The refresh
// token is revoked; the short-lived access token is left to expire.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordResetRequest defines the payload for requesting a reset email.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest defines the payload for completing a reset.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse represents the response data for a user account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest defines the self-service profile update payload.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Phone     *string `json:"phone"      validate:"omitempty,max=32"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Password  *string `json:"password"   validate:"omitempty,min=8,max=72"`
}

// CreateListingRequest defines the payload for creating a listing.
type CreateListingRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Price       int64  `json:"price"       validate:"gte=0"`
	Description string `json:"description"`
}

// UpdateListingRequest defines the partial-update payload for a listing.
type UpdateListingRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=255"`
	Price       *int64  `json:"price"       validate:"omitempty,gte=0"`
	Description *string `json:"description"`
}

// ListingResponse represents the response data for a listing.
type ListingResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateReviewRequest defines the payload for creating a review.
type CreateReviewRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// UpdateReviewRequest defines the payload for replacing a review's text.
type UpdateReviewRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// ReviewResponse represents the response data for a review.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	AuthorID  uuid.UUID `json:"author_id"`
	ListingID uuid.UUID `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func listingToResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Price:       l.Price,
		Description: l.Description,
		OwnerID:     l.OwnerID,
		CreatedAt:   l.CreatedAt,
	}
}

func listingsToResponse(listings []*domain.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingToResponse(l))
	}
	return out
}

func reviewToResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Text:      r.Text,
		AuthorID:  r.AuthorID,
		ListingID: r.ListingID,
		CreatedAt: r.CreatedAt,
	}
}

func reviewsToResponse(reviews []*domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewToResponse(r))
	}
	return out
}
