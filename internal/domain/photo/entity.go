package photo

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ModerationStatus is the content-moderation state of a photo. It is
// supplied by the moderation collaborator and checked ahead of the
// access decision table.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationPending  ModerationStatus = "pending"
	ModerationFlagged  ModerationStatus = "flagged"  // forced blur for everyone
	ModerationRejected ModerationStatus = "rejected" // hidden entirely
)

// Photo is the privacy record for one uploaded photo: identity, owner,
// the object key of the original bytes (owned by the external store,
// referenced here), the current privacy policy, and at most one live
// blurred rendition reference.
type Photo struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OwnerUserID  uuid.UUID `db:"owner_user_id" json:"owner_user_id"`
	Key          string    `db:"key" json:"key"` // object key of the original
	URL          string    `db:"url" json:"url"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	Width        int       `db:"width" json:"width"`
	Height       int       `db:"height" json:"height"`

	// Privacy policy (flattened for sqlx)
	PrivacyLevel   PrivacyLevel `db:"privacy_level" json:"privacy_level"`
	BlurIntensity  float64      `db:"blur_intensity" json:"blur_intensity"`
	RequiresMatch  bool         `db:"requires_match" json:"requires_match"`
	AllowVIPAccess bool         `db:"allow_vip_access" json:"allow_vip_access"`

	// Derived rendition reference; NULL until first derivation
	BlurredKey sql.NullString `db:"blurred_key" json:"-"`

	ModerationStatus ModerationStatus `db:"moderation_status" json:"moderation_status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Policy returns the photo's privacy policy as a value
func (p *Photo) Policy() Policy {
	return Policy{
		Level:          p.PrivacyLevel,
		BlurIntensity:  p.BlurIntensity,
		RequiresMatch:  p.RequiresMatch,
		AllowVIPAccess: p.AllowVIPAccess,
	}
}

// SetPolicy replaces the photo's privacy policy wholesale
func (p *Photo) SetPolicy(policy Policy) {
	p.PrivacyLevel = policy.Level
	p.BlurIntensity = policy.BlurIntensity
	p.RequiresMatch = policy.RequiresMatch
	p.AllowVIPAccess = policy.AllowVIPAccess
}

// HasBlurredVersion reports whether a blurred rendition is materialized
func (p *Photo) HasBlurredVersion() bool {
	return p.BlurredKey.Valid && p.BlurredKey.String != ""
}

// IsOwner reports whether the given user owns this photo
func (p *Photo) IsOwner(userID uuid.UUID) bool {
	return p.OwnerUserID == userID
}
