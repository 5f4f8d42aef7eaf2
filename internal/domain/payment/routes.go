package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banquet/banquet-api/internal/middleware"
)

// Routes returns payment router. The webhook endpoint is public and
// protected by signature verification instead of a session.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer)
			r.Post("/intent", h.CreateIntent)
			r.Post("/confirm", h.Confirm)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff)
			r.Post("/refund", h.Refund)
		})

		r.Get("/booking/{bookingID}", h.ListByBooking)
	})

	return r
}
