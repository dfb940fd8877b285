package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/api/middleware"
	"github.com/dkotenko/adboard/internal/authz"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/store"
)

// Pagination bounds. Out-of-range page sizes are clamped, not rejected.
const (
	DefaultPageSize = 10
	MaxPageSize     = 20
)

// getIdentity extracts the caller identity placed in the context by the auth
// middleware. A request that never passed through the middleware counts as
// anonymous.
func getIdentity(r *http.Request) authz.Identity {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		return authz.Anonymous
	}
	return identity
}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// parsePage reads the page and page_size query parameters and converts them
// into an offset/limit window. Page numbers start at 1; a malformed or
// out-of-range value falls back to the default rather than failing the
// request.
func parsePage(r *http.Request) store.Page {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	size := DefaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return store.Page{
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// parseListingFilter reads the optional listing query filters.
func parseListingFilter(r *http.Request) store.ListingFilter {
	filter := store.ListingFilter{
		Title: r.URL.Query().Get("title"),
	}
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.OwnerID = id
		}
	}
	return filter
}
