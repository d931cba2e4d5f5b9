package photo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines photo data access interface
type Repository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Photo, error)
	UpdatePolicy(ctx context.Context, id uuid.UUID, policy Policy, updatedAt time.Time) error
	SetBlurredKey(ctx context.Context, id uuid.UUID, key string) error
	ClearBlurredKey(ctx context.Context, id uuid.UUID) error
	SetModerationStatus(ctx context.Context, id uuid.UUID, status ModerationStatus) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new photo repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO photos (
			id, owner_user_id, key, url, original_name, mime_type, size_bytes,
			width, height, privacy_level, blur_intensity, requires_match,
			allow_vip_access, blurred_key, moderation_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, query,
		photo.ID,
		photo.OwnerUserID,
		photo.Key,
		photo.URL,
		photo.OriginalName,
		photo.MimeType,
		photo.SizeBytes,
		photo.Width,
		photo.Height,
		photo.PrivacyLevel,
		photo.BlurIntensity,
		photo.RequiresMatch,
		photo.AllowVIPAccess,
		photo.BlurredKey,
		photo.ModerationStatus,
		photo.CreatedAt,
		photo.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	query := `SELECT * FROM photos WHERE id = $1`
	var photo Photo
	err := r.db.GetContext(ctx, &photo, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Photo, error) {
	query := `SELECT * FROM photos WHERE owner_user_id = $1 ORDER BY created_at DESC`
	var photos []*Photo
	err := r.db.SelectContext(ctx, &photos, query, ownerUserID)
	return photos, err
}

// UpdatePolicy replaces the policy in a single statement. Postgres row
// locking serializes concurrent updates to the same photo, and readers
// see either the old or the new policy, never a mix.
func (r *repository) UpdatePolicy(ctx context.Context, id uuid.UUID, policy Policy, updatedAt time.Time) error {
	query := `
		UPDATE photos
		SET privacy_level = $2,
		    blur_intensity = $3,
		    requires_match = $4,
		    allow_vip_access = $5,
		    updated_at = $6
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		id,
		policy.Level,
		policy.BlurIntensity,
		policy.RequiresMatch,
		policy.AllowVIPAccess,
		updatedAt,
	)
	return err
}

func (r *repository) SetBlurredKey(ctx context.Context, id uuid.UUID, key string) error {
	query := `UPDATE photos SET blurred_key = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, key)
	return err
}

func (r *repository) ClearBlurredKey(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE photos SET blurred_key = NULL WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) SetModerationStatus(ctx context.Context, id uuid.UUID, status ModerationStatus) error {
	query := `UPDATE photos SET moderation_status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}
