package specialist

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
)

// Handler handles specialist directory HTTP requests
type Handler struct {
	directory *Directory
}

// NewHandler creates specialist handler
func NewHandler(directory *Directory) *Handler {
	return &Handler{directory: directory}
}

// List handles GET /specialists?specialty=&city=&q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.directory.Search(Filter{
		Specialty: q.Get("specialty"),
		City:      q.Get("city"),
		Search:    q.Get("q"),
	})
	if errors.Is(err, ErrSearchTooLong) {
		response.ValidationError(w, map[string]string{"q": "Value is too long (max: 100)"})
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, res)
}

// Filters handles GET /specialists/filters
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string][]string{
		"specialties": h.directory.Specialties(),
		"cities":      h.directory.Cities(),
	})
}

// Get handles GET /specialists/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	clinic, err := h.directory.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Clinic not found")
		return
	}
	response.OK(w, clinic)
}
