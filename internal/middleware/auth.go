package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/pkg/jwt"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
)

type contextKey string

const principalKey contextKey = "principal"

// SignInPath is where clients send users who are not signed in.
const SignInPath = "/auth"

// State is the resolution state of the current user.
type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Principal is the current user of a request.
type Principal struct {
	State  State     `json:"state"`
	UserID uuid.UUID `json:"user_id,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Authenticated reports whether p carries a verified user.
func (p Principal) Authenticated() bool {
	return p.State == StateAuthenticated && p.UserID != uuid.Nil
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal of ctx. Contexts that never passed
// through Authenticate are still loading.
func GetPrincipal(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return Principal{State: StateLoading}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	p := GetPrincipal(ctx)
	if !p.Authenticated() {
		return uuid.Nil
	}
	return p.UserID
}

// Authenticate resolves the bearer token into a Principal. It never rejects.
func Authenticate(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := resolve(jwtService, r)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func resolve(jwtService *jwt.Service, r *http.Request) Principal {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Principal{State: StateUnauthenticated, Reason: "Missing authorization header"}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return Principal{State: StateUnauthenticated, Reason: "Invalid authorization header format"}
	}

	claims, err := jwtService.ValidateAccessToken(parts[1])
	if err != nil {
		if err == jwt.ErrExpiredToken {
			return Principal{State: StateUnauthenticated, Reason: "Token expired"}
		}
		return Principal{State: StateUnauthenticated, Reason: "Invalid token"}
	}
	return Principal{State: StateAuthenticated, UserID: claims.UserID}
}

// RequireUser answers requests without an authenticated principal with a
// 401 pointing at the sign-in entry point.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetPrincipal(r.Context()).Authenticated() {
			response.SignInRequired(w, SignInPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth returns middleware that validates JWT and requires a signed-in user
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	authenticate := Authenticate(jwtService)
	return func(next http.Handler) http.Handler {
		return authenticate(RequireUser(next))
	}
}
