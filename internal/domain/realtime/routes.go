package realtime

import (
	"net/http"
)

// Route returns the socket endpoint wrapped in auth.
// Browsers cannot set headers on a socket handshake, so ?token= is accepted too.
func (h *Handler) Route(authMiddleware func(http.Handler) http.Handler) http.Handler {
	return tokenFromQuery(authMiddleware(http.HandlerFunc(h.WebSocket)))
}

func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r = r.Clone(r.Context())
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}
