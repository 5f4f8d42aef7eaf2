package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banquet/banquet-api/internal/middleware"
)

// Routes returns booking router. Everything requires authentication.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCustomer)
		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
	})

	r.Get("/venue/{venueID}", h.ListByVenue)
	r.Get("/hall/{hallID}", h.ListByHall)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/receipt", h.Receipt)
	r.Post("/{id}/cancel", h.Cancel)

	return r
}
