package photo

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matchpix/matchpix-api/internal/domain/blur"
	"github.com/matchpix/matchpix-api/internal/middleware"
	"github.com/matchpix/matchpix-api/internal/pkg/errorhandler"
	"github.com/matchpix/matchpix-api/internal/pkg/response"
	"github.com/matchpix/matchpix-api/internal/pkg/validator"
)

// Handler handles photo HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates photo handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadWithPrivacy handles POST /photos/upload-with-privacy
func (h *Handler) UploadWithPrivacy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UploadWithPrivacyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		response.ValidationError(w, map[string]string{
			"file": "file must be valid base64",
		})
		return
	}

	photo, err := h.service.UploadWithPrivacy(r.Context(), userID, data, req.FileName, req.PolicyInput)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, PhotoResponseFromEntity(photo))
}

// GetWithPrivacyControl handles GET /photos/{id}/privacy-control.
// The viewer identifies via viewerUserId; hasMatch is an optional
// override for trusted callers that already resolved the match.
func (h *Handler) GetWithPrivacyControl(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	viewerUserID, err := uuid.Parse(r.URL.Query().Get("viewerUserId"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing viewerUserId")
		return
	}

	var hasMatchOverride *bool
	if raw := r.URL.Query().Get("hasMatch"); raw != "" {
		hasMatch := raw == "true"
		hasMatchOverride = &hasMatch
	}

	result, err := h.service.GetWithPrivacyControl(r.Context(), photoID, viewerUserID, hasMatchOverride)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, &PrivacyControlResponse{
		PhotoID:         result.Photo.ID,
		URL:             result.URL,
		ContentType:     result.ContentType,
		IsBlurred:       result.IsBlurred(),
		CanViewOriginal: result.CanViewOriginal,
		PrivacyMessage:  result.Message,
	})
}

// GetBlurred handles GET /photos/{id}/blurred and serves the blurred
// bytes directly
func (h *Handler) GetBlurred(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	rendition, err := h.service.GetBlurred(r.Context(), photoID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", rendition.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(rendition.Bytes)
}

// UpdatePrivacy handles PUT /photos/{id}/privacy
func (h *Handler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	var req UpdatePrivacyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	photo, err := h.service.UpdatePrivacy(r.Context(), photoID, userID, req.PolicyInput)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, PhotoResponseFromEntity(photo))
}

// ListMine handles GET /photos
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	photos, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]*PhotoResponse, 0, len(photos))
	for _, p := range photos {
		items = append(items, PhotoResponseFromEntity(p))
	}
	response.OK(w, items)
}

// SetModeration handles PATCH /photos/{id}/moderation (admin only)
func (h *Handler) SetModeration(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	var req SetModerationRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	photo, err := h.service.SetModerationStatus(r.Context(), photoID, ModerationStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, PhotoResponseFromEntity(photo))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, ErrNotPhotoOwner):
		response.Forbidden(w, "Only the photo owner can update privacy settings")
	case errors.Is(err, ErrPhotoNotFound), errors.Is(err, ErrPhotoRejected):
		response.NotFound(w, "Photo not found")
	case errors.Is(err, ErrNoBlurredVersion):
		response.NotFound(w, "No blurred version exists for this photo")
	case blur.IsDerivationError(err):
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway, "DERIVATION_FAILED", "Failed to produce blurred rendition", err)
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}
