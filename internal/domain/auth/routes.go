package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hairtrack/hairtrack-api/internal/middleware"
)

// Routes returns auth router. authenticate resolves the principal without
// rejecting; protected routes add RequireUser on top.
func (h *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/sign-up", h.SignUp)
	r.Post("/sign-in", h.SignIn)
	r.Post("/refresh", h.Refresh)
	r.Post("/sign-out", h.SignOut)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/session", h.Session)
		r.With(middleware.RequireUser).Get("/me", h.Me)
	})

	return r
}
