package capture

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
	"github.com/hairtrack/hairtrack-api/internal/pkg/validator"
)

// maxUploadBody leaves room for multipart framing around a 10MB image.
const maxUploadBody = MaxFileSize + 1<<20

// Handler handles capture HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates capture handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /capture
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wz, err := h.service.Current(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, WizardResponseFromEntity(wz))
}

// Angles handles GET /capture/angles
func (h *Handler) Angles(w http.ResponseWriter, r *http.Request) {
	response.OK(w, analysis.Angles())
}

// Event handles POST /capture/events
func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	ev, err := ParseEvent(req.Event)
	if err != nil {
		response.BadRequest(w, "Unknown event")
		return
	}
	wz, err := h.service.Fire(r.Context(), middleware.GetUserID(r.Context()), ev)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, WizardResponseFromEntity(wz))
}

// SetPhoto handles PUT /capture/photos/{angle}
// Multipart form: file + method (camera, gallery or file)
func (h *Handler) SetPhoto(w http.ResponseWriter, r *http.Request) {
	angle, err := analysis.ParseAngle(chi.URLParam(r, "angle"))
	if err != nil {
		response.BadRequest(w, "Invalid angle")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, NoticeFileTooLarge)
			return
		}
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	method := r.FormValue("method")
	if err := validator.ValidateVar(method, "capture_method"); err != nil {
		response.BadRequest(w, "Invalid method. Must be: camera, gallery, or file")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Failed to read file")
		return
	}

	wz, err := h.service.SetPhoto(r.Context(), middleware.GetUserID(r.Context()), angle, Upload{
		Method:      Method(method),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, WizardResponseFromEntity(wz))
}

// RemovePhoto handles DELETE /capture/photos/{angle}
func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	angle, err := analysis.ParseAngle(chi.URLParam(r, "angle"))
	if err != nil {
		response.BadRequest(w, "Invalid angle")
		return
	}
	wz, err := h.service.RemovePhoto(r.Context(), middleware.GetUserID(r.Context()), angle)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, WizardResponseFromEntity(wz))
}

func (h *Handler) reject(w http.ResponseWriter, n Notice) {
	code := "INVALID_FILE"
	if n == NoticeFileTooLarge {
		code = "FILE_TOO_LARGE"
	}
	response.ErrorWithDetails(w, http.StatusBadRequest, code, n.Title, map[string]string{"description": n.Description})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *RejectionError
	switch {
	case errors.As(err, &rejection):
		h.reject(w, rejection.Notice)
	case errors.Is(err, ErrSubmissionInProgress):
		response.Error(w, http.StatusConflict, "SUBMISSION_IN_PROGRESS", "Analysis already in progress")
	case errors.Is(err, ErrNotEnoughPhotos):
		response.Error(w, http.StatusUnprocessableEntity, "NOT_ENOUGH_PHOTOS", "Upload at least 2 photos to continue.")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "Action not available in the current step")
	case errors.Is(err, ErrUnknownEvent):
		response.BadRequest(w, "Unknown event")
	default:
		logger.LogError(r.Context(), err, "capture request failed")
		response.InternalError(w)
	}
}
