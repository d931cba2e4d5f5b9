package relationships

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpix/matchpix-api/internal/middleware"
)

// Routes returns matches router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListMatches)
	r.Post("/{userId}", h.CreateMatch)
	r.Delete("/{userId}", h.DeleteMatch)

	return r
}

// VIPRoutes returns VIP admin router
func (h *Handler) VIPRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Put("/{userId}", h.GrantVIP)
	r.Delete("/{userId}", h.RevokeVIP)

	return r
}
