package hall

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banquet/banquet-api/internal/middleware"
)

// Routes returns hall router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/search", h.Search)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner)
			r.Post("/", h.Create)
			r.Get("/mine", h.Mine)
			r.Put("/{id}", h.Update)
			r.Post("/{id}/staff", h.AddStaff)
			r.Delete("/{id}/staff/{userID}", h.RemoveStaff)
			r.Post("/{id}/documents", h.UploadDocument)
			r.Delete("/{id}/documents/{docID}", h.DeleteDocument)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff)
			r.Get("/{id}/staff", h.ListStaff)
			r.Get("/{id}/documents", h.ListDocuments)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/{id}/approve", h.Approve)
			r.Post("/{id}/reject", h.Reject)
			r.Post("/{id}/suspend", h.Suspend)
			r.Post("/{id}/reinstate", h.Reinstate)
		})
	})

	// Public hall detail goes last so /search and /mine match first.
	r.Get("/{id}", h.Get)

	return r
}
