package photo

import (
	"time"

	"github.com/google/uuid"
)

// UploadWithPrivacyRequest for POST /photos/upload-with-privacy.
// The file travels base64-encoded in the JSON body; privacy fields are
// optional and take documented defaults when omitted.
type UploadWithPrivacyRequest struct {
	File     string `json:"file" validate:"required"`
	FileName string `json:"fileName" validate:"required,min=1,max=255"`
	PolicyInput
}

// UpdatePrivacyRequest for PUT /photos/{id}/privacy. The policy is
// replaced wholesale; omitted fields take the same defaults as upload.
type UpdatePrivacyRequest struct {
	PolicyInput
}

// SetModerationRequest for PATCH /photos/{id}/moderation
type SetModerationRequest struct {
	Status string `json:"status" validate:"required,moderation_status"`
}

// PhotoResponse represents a photo in API responses
type PhotoResponse struct {
	ID                uuid.UUID `json:"id"`
	OwnerUserID       uuid.UUID `json:"ownerUserId"`
	URL               string    `json:"url"`
	OriginalName      string    `json:"originalName"`
	MimeType          string    `json:"mimeType"`
	SizeBytes         int64     `json:"sizeBytes"`
	PrivacyLevel      string    `json:"privacyLevel"`
	BlurIntensity     float64   `json:"blurIntensity"`
	RequiresMatch     bool      `json:"requiresMatch"`
	AllowVIPAccess    bool      `json:"allowVIPAccess"`
	HasBlurredVersion bool      `json:"hasBlurredVersion"`
	ModerationStatus  string    `json:"moderationStatus"`
	CreatedAt         string    `json:"createdAt"`
}

// PhotoResponseFromEntity converts entity to response DTO
func PhotoResponseFromEntity(p *Photo) *PhotoResponse {
	return &PhotoResponse{
		ID:                p.ID,
		OwnerUserID:       p.OwnerUserID,
		URL:               p.URL,
		OriginalName:      p.OriginalName,
		MimeType:          p.MimeType,
		SizeBytes:         p.SizeBytes,
		PrivacyLevel:      string(p.PrivacyLevel),
		BlurIntensity:     p.BlurIntensity,
		RequiresMatch:     p.RequiresMatch,
		AllowVIPAccess:    p.AllowVIPAccess,
		HasBlurredVersion: p.HasBlurredVersion(),
		ModerationStatus:  string(p.ModerationStatus),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
}

// PrivacyControlResponse for GET /photos/{id}/privacy-control
type PrivacyControlResponse struct {
	PhotoID         uuid.UUID `json:"photoId"`
	URL             string    `json:"url"`
	ContentType     string    `json:"contentType"`
	IsBlurred       bool      `json:"isBlurred"`
	CanViewOriginal bool      `json:"canViewOriginal"`
	PrivacyMessage  string    `json:"privacyMessage"`
}
