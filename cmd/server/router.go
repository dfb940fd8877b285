package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkotenko/adboard/internal/api"
	apimiddleware "github.com/dkotenko/adboard/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(apimiddleware.MetricsMiddleware)

	authHandler := api.NewAuthHandler(
		app.userService, app.jwtService, app.tokenDenylist, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	listingHandler := api.NewListingHandler(app.listingService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService, app.userStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/password-reset", authHandler.RequestPasswordReset)
		r.Post("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

		// Listing and review endpoints resolve the caller identity but
		// leave the anonymous/authenticated decision to the service
		// policies: listing browsing is open, everything else is not.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Identity)

			r.Get("/listings", listingHandler.List)
			r.Post("/listings", listingHandler.Create)
			r.Get("/listings/{id}", listingHandler.Get)
			r.Put("/listings/{id}", listingHandler.Update)
			r.Patch("/listings/{id}", listingHandler.Update)
			r.Delete("/listings/{id}", listingHandler.Delete)

			r.Get("/listings/{id}/reviews", reviewHandler.ListForListing)
			r.Post("/listings/{id}/reviews", reviewHandler.Create)

			r.Get("/reviews", reviewHandler.List)
			r.Get("/reviews/{id}", reviewHandler.Get)
			r.Put("/reviews/{id}", reviewHandler.Update)
			r.Patch("/reviews/{id}", reviewHandler.Update)
			r.Delete("/reviews/{id}", reviewHandler.Delete)
		})

		// Profile endpoints are strictly protected.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Identity)
			r.Use(authMiddleware.RequireAuth)

			r.Get("/users/me", userHandler.Me)
			r.Patch("/users/me", userHandler.UpdateMe)
			r.Delete("/users/me", userHandler.DeactivateMe)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
