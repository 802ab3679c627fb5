package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns history router. It is mounted at the API root.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/sessions", h.List)
		r.Get("/sessions/compare", h.Compare)
		r.Get("/sessions/{id}", h.Get)
		r.Get("/sessions/{id}/report", h.Report)
		r.Get("/trend", h.Trend)
		r.Get("/export.parquet", h.Export)
	})

	return r
}
