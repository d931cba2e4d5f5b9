package relationships

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matchpix/matchpix-api/internal/middleware"
	"github.com/matchpix/matchpix-api/internal/pkg/response"
)

// Handler handles relationships HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates relationships handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateMatch handles POST /matches/{userId}
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	match, err := h.service.CreateMatch(r.Context(), userID, targetID)
	if err != nil {
		if err == ErrSelfMatch {
			response.BadRequest(w, "You cannot match with yourself")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, match)
}

// DeleteMatch handles DELETE /matches/{userId}
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteMatch(r.Context(), userID, targetID); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// ListMatches handles GET /matches
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matches, err := h.service.ListMatches(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, matches)
}

// GrantVIPRequest for PUT /vip/{userId}
type GrantVIPRequest struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GrantVIP handles PUT /vip/{userId} (admin only)
func (h *Handler) GrantVIP(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req GrantVIPRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}

	if err := h.service.GrantVIP(r.Context(), targetID, req.ExpiresAt); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "granted"})
}

// RevokeVIP handles DELETE /vip/{userId} (admin only)
func (h *Handler) RevokeVIP(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RevokeVIP(r.Context(), targetID); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
