package specialist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns specialist router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/filters", h.Filters)
	r.Get("/{id}", h.Get)

	return r
}
