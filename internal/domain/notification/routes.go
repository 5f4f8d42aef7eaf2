package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banquet/banquet-api/internal/middleware"
)

// Routes returns notification router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireStaff)
		r.Get("/ws", h.WebSocket)
	})

	return r
}
