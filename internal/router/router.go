// Package router sets up the HTTP routes and middleware chain for the
// lexcache content API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lexcache/internal/handlers"
	"lexcache/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up. limiter may be nil to disable rate limiting
// (used by tests).
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no rate limit.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Get("/categories", api.Categories)
		r.Get("/categories/tree", api.CategoryTree)
		r.Route("/categories/{id}", func(r chi.Router) {
			r.Get("/posts", api.CategoryPosts)
			r.Get("/posts/all", api.AllCategoryPosts)
			r.Get("/subcategories", api.Subcategories)
		})

		r.Post("/sync", api.TriggerSync)
		r.Get("/diagnostics", api.Diagnostics)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
