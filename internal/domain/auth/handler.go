package auth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/password"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
	"github.com/hairtrack/hairtrack-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SignUp handles POST /auth/sign-up
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Conflict(w, "Email already registered")
		case errors.Is(err, password.ErrTooShort):
			response.ValidationError(w, map[string]string{"password": "Password must be at least 6 characters"})
		default:
			log.Error().Err(err).Str("email", req.Email).Msg("failed to sign up user")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, result)
}

// SignIn handles POST /auth/sign-in
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("sign-in failed with internal error")
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired refresh token")
		return
	}

	response.OK(w, result)
}

// SignOut handles POST /auth/sign-out
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.service.SignOut(r.Context(), req.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("sign-out could not revoke refresh token")
	}

	response.NoContent(w)
}

// Session handles GET /auth/session. It always answers 200 with the
// principal state so clients can decide where to route.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	resp := SessionResponse{State: p.State}
	if p.Authenticated() {
		u, err := h.service.GetCurrentUser(r.Context(), p.UserID)
		if err != nil {
			// Token outlived its account.
			resp.State = middleware.StateUnauthenticated
		} else {
			resp.User = u
		}
	}
	response.OK(w, resp)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}
	response.OK(w, u)
}
