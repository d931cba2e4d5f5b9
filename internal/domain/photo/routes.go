package photo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchpix/matchpix-api/internal/middleware"
)

// Routes returns photos router. Privacy-controlled reads are public
// (the viewer identifies via query parameters); mutations require
// authentication and moderation requires the admin role.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}/privacy-control", h.GetWithPrivacyControl)
	r.Get("/{id}/blurred", h.GetBlurred)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.ListMine)
		r.Post("/upload-with-privacy", h.UploadWithPrivacy)
		r.Put("/{id}/privacy", h.UpdatePrivacy)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Patch("/{id}/moderation", h.SetModeration)
		})
	})

	return r
}
