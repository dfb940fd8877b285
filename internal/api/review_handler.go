package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/api/shared"
	"github.com/dkotenko/adboard/internal/service"
	"github.com/dkotenko/adboard/internal/store"
)

// ReviewHandler handles review-related HTTP requests, including the routes
// nested under a parent listing.
type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		logger:        logger.With("component", "review_handler"),
	}
}

// List handles GET /api/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, count, err := h.reviewService.List(
		r.Context(), getIdentity(r), parseReviewFilter(r), parsePage(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PaginatedResponse{
		Count:   count,
		Results: reviewsToResponse(reviews),
	})
}

// ListForListing handles GET /api/listings/{id}/reviews.
func (h *ReviewHandler) ListForListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reviews, count, err := h.reviewService.ListForListing(
		r.Context(), getIdentity(r), listingID, parsePage(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PaginatedResponse{
		Count:   count,
		Results: reviewsToResponse(reviews),
	})
}

// Get handles GET /api/reviews/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	review, err := h.reviewService.Get(r.Context(), getIdentity(r), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reviewToResponse(review))
}

// Create handles POST /api/listings/{id}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	listingID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CreateReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	review, err := h.reviewService.Create(r.Context(), getIdentity(r), listingID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, reviewToResponse(review))
}

// Update handles PATCH /api/reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	review, err := h.reviewService.Update(r.Context(), getIdentity(r), id, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reviewToResponse(review))
}

// Delete handles DELETE /api/reviews/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.reviewService.Delete(r.Context(), getIdentity(r), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseReviewFilter reads the optional review query filters.
func parseReviewFilter(r *http.Request) store.ReviewFilter {
	var filter store.ReviewFilter
	if raw := r.URL.Query().Get("listing_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ListingID = id
		}
	}
	if raw := r.URL.Query().Get("author_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.AuthorID = id
		}
	}
	return filter
}
