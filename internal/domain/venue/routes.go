package venue

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banquet/banquet-api/internal/middleware"
)

// Routes returns venue router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/", h.ListByHall)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/pricing", h.GetPricing)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireStaff)

		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/activate", h.Activate)
		r.Post("/{id}/deactivate", h.Deactivate)
		r.Put("/{id}/pricing", h.SetPricing)
		r.Post("/{id}/photo", h.UploadPhoto)
	})

	return r
}
