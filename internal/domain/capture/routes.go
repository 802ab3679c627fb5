package capture

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns capture router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.Get)
	r.Get("/angles", h.Angles)
	r.Post("/events", h.Event)
	r.Put("/photos/{angle}", h.SetPhoto)
	r.Delete("/photos/{angle}", h.RemovePhoto)

	return r
}
