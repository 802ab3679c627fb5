package app

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hairtrack/hairtrack-api/internal/domain/auth"
	"github.com/hairtrack/hairtrack-api/internal/domain/capture"
	"github.com/hairtrack/hairtrack-api/internal/domain/history"
	"github.com/hairtrack/hairtrack-api/internal/domain/profile"
	"github.com/hairtrack/hairtrack-api/internal/domain/realtime"
	"github.com/hairtrack/hairtrack-api/internal/domain/specialist"
	"github.com/hairtrack/hairtrack-api/internal/domain/treatment"
	"github.com/hairtrack/hairtrack-api/internal/middleware"
	pkgresponse "github.com/hairtrack/hairtrack-api/internal/pkg/response"
)

// Version is reported by /health.
const Version = "1.0.0"

// Router builds the HTTP surface.
func (a *App) Router() http.Handler {
	authenticate := middleware.Authenticate(a.JWT)
	authMiddleware := middleware.Auth(a.JWT)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(a.Auth)
	profileHandler := profile.NewHandler(a.Profiles)
	captureHandler := capture.NewHandler(a.Capture)
	historyHandler := history.NewHandler(a.History)
	treatmentHandler := treatment.NewHandler(a.Treatments)
	specialistHandler := specialist.NewHandler(a.Clinics)
	realtimeHandler := realtime.NewHandler(a.Hub, a.Config.AllowedOrigins)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(a.Config.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Handle("/ws", realtimeHandler.Route(authMiddleware))

	r.Get("/health", a.health)

	if a.local != nil && a.Config.ServeLocalFiles {
		prefix := localFilesPath(a.Config.LocalStorageURL)
		r.Mount(prefix, http.StripPrefix(prefix, a.local.Handler()))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5, "application/json", "text/html", "text/markdown"))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", authHandler.Routes(authenticate))
		r.Mount("/profile", profileHandler.Routes(authMiddleware))
		r.Mount("/capture", captureHandler.Routes(authMiddleware))
		r.Mount("/treatments", treatmentHandler.Routes(authMiddleware))
		r.Mount("/specialists", specialistHandler.Routes(authMiddleware))

		r.Mount("/", historyHandler.Routes(authMiddleware))
	})

	return r
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":  "ok",
		"version": Version,
	}
	if err := a.DB.PingContext(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		pkgresponse.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		}
	}
	pkgresponse.OK(w, status)
}

// localFilesPath returns the path component signed local URLs point at.
func localFilesPath(baseURL string) string {
	p := "/files"
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" && u.Path != "/" {
		p = u.Path
	}
	return "/" + strings.Trim(p, "/")
}
