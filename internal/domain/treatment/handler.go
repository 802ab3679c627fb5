package treatment

import (
	"net/http"

	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
	"github.com/hairtrack/hairtrack-api/internal/pkg/validator"
)

// Handler handles treatment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates treatment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /treatments?category=&cost=&commitment=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListRequest{
		Category:   orAll(q.Get("category")),
		Cost:       orAll(q.Get("cost")),
		Commitment: orAll(q.Get("commitment")),
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.List(r.Context(), req.Filter())
	if err != nil {
		logger.LogError(r.Context(), err, "list treatments failed")
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}
