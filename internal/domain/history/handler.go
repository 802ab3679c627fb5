package history

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
)

// Handler handles history HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates history handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /sessions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.WithMeta(w, sessions, response.Meta{Total: len(sessions)})
}

// Get handles GET /sessions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}
	session, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, session)
}

// Compare handles GET /sessions/compare?a=&b=
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	a, errA := uuid.Parse(r.URL.Query().Get("a"))
	b, errB := uuid.Parse(r.URL.Query().Get("b"))
	if errA != nil || errB != nil {
		response.BadRequest(w, "Query parameters a and b must be session IDs")
		return
	}
	result, err := h.service.Compare(r.Context(), middleware.GetUserID(r.Context()), a, b)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, result)
}

// Report handles GET /sessions/{id}/report?format=markdown|html
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}
	md, err := h.service.Report(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(RenderHTML(md))
	case "", "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
	default:
		response.BadRequest(w, "Invalid format. Must be: markdown or html")
	}
}

// Trend handles GET /trend
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Trend(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, trend)
}

// Export handles GET /export.parquet
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.service.Export(r.Context(), middleware.GetUserID(r.Context()), &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	filename := fmt.Sprintf("hair-history-%s.parquet", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(w, "Session not found")
	case errors.Is(err, ErrSameSession):
		response.BadRequest(w, "Choose two different sessions to compare")
	default:
		logger.LogError(r.Context(), err, "history request failed")
		response.InternalError(w)
	}
}
