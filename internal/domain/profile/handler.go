package profile

import (
	"errors"
	"net/http"

	"github.com/hairtrack/hairtrack-api/internal/domain/user"
	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
	"github.com/hairtrack/hairtrack-api/internal/pkg/validator"
)

// Handler handles profile HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /profile
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, ProfileResponseFromEntity(p))
}

// Update handles PUT /profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	p, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, ProfileResponseFromEntity(p))
}

// Delete handles DELETE /profile and removes the whole account
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}
	logger.LogInfo(r.Context(), "Account deleted", "user_id", userID.String())
	response.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, "Profile not found")
	default:
		logger.LogError(r.Context(), err, "profile request failed")
		response.InternalError(w)
	}
}
