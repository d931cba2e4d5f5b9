package photo

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchpix/matchpix-api/internal/domain/blur"
	"github.com/matchpix/matchpix-api/internal/pkg/imaging"
	"github.com/matchpix/matchpix-api/internal/pkg/storage"
)

// RelationshipProvider answers viewer relationship questions. The
// relationships service satisfies it.
type RelationshipProvider interface {
	HasMatch(ctx context.Context, viewerID, ownerID uuid.UUID) (bool, error)
	IsVIP(ctx context.Context, userID uuid.UUID) (bool, error)
}

// DerivationEngine produces and caches blurred renditions. blur.Engine
// satisfies it.
type DerivationEngine interface {
	GetOrCreate(ctx context.Context, photoID uuid.UUID, originalKey string, intensity float64) (*blur.Rendition, error)
	Invalidate(ctx context.Context, photoID uuid.UUID, intensity float64) error
}

// Prewarmer schedules ahead-of-read derivation. blur.Queue satisfies
// it; failures are logged and ignored.
type Prewarmer interface {
	Enqueue(ctx context.Context, photoID uuid.UUID) error
}

// Service handles photo privacy business logic
type Service struct {
	repo          Repository
	store         storage.Storage
	engine        DerivationEngine
	relationships RelationshipProvider
	prewarm       Prewarmer
	defaults      PolicyDefaults
}

// NewService creates photo service. prewarm may be nil.
func NewService(repo Repository, store storage.Storage, engine DerivationEngine, relationships RelationshipProvider, prewarm Prewarmer, defaults PolicyDefaults) *Service {
	return &Service{
		repo:          repo,
		store:         store,
		engine:        engine,
		relationships: relationships,
		prewarm:       prewarm,
		defaults:      defaults,
	}
}

// PrivacyControlResult is the outcome of a privacy-controlled read
type PrivacyControlResult struct {
	Photo           *Photo
	Rendition       Rendition
	URL             string
	ContentType     string
	CanViewOriginal bool
	Message         string
}

// IsBlurred reports whether the served rendition is the blurred one
func (r *PrivacyControlResult) IsBlurred() bool {
	return r.Rendition == RenditionBlurred
}

// UploadWithPrivacy stores the original bytes and creates the photo
// privacy record with its initial policy
func (s *Service) UploadWithPrivacy(ctx context.Context, ownerUserID uuid.UUID, data []byte, fileName string, input PolicyInput) (*Photo, error) {
	if !imaging.ValidateType(fileName) {
		return nil, &ValidationError{Fields: map[string]string{
			"fileName": "file extension is not a supported image type",
		}}
	}

	data, mimeType, err := storage.ValidatePhoto(bytes.NewReader(data), storage.MaxPhotoSize)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"file": err.Error(),
		}}
	}

	width, height, _, err := imaging.Probe(data)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"file": "file is not a decodable image",
		}}
	}

	policy, err := NewPolicy(input, s.defaults)
	if err != nil {
		return nil, err
	}

	photoID := uuid.New()
	key := fmt.Sprintf("photos/%s/%s%s", ownerUserID, photoID, storage.GetExtensionForMime(mimeType))

	if err := s.store.Put(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}

	now := time.Now()
	photo := &Photo{
		ID:               photoID,
		OwnerUserID:      ownerUserID,
		Key:              key,
		URL:              s.store.GetURL(key),
		OriginalName:     fileName,
		MimeType:         mimeType,
		SizeBytes:        int64(len(data)),
		Width:            width,
		Height:           height,
		ModerationStatus: ModerationApproved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	photo.SetPolicy(policy)

	if err := s.repo.Create(ctx, photo); err != nil {
		// Don't leave orphaned originals behind
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Error().Err(delErr).Str("key", key).Msg("Failed to clean up original after create failure")
		}
		return nil, err
	}

	s.schedulePrewarm(ctx, photo)

	log.Info().
		Str("photo_id", photo.ID.String()).
		Str("owner_id", ownerUserID.String()).
		Str("privacy_level", string(policy.Level)).
		Msg("Photo uploaded with privacy policy")

	return photo, nil
}

// GetWithPrivacyControl decides which rendition the viewer receives
// and resolves its URL, materializing the blurred rendition lazily.
// hasMatchOverride, when non-nil, substitutes the relationship lookup
// (used by trusted callers that already resolved the match).
func (s *Service) GetWithPrivacyControl(ctx context.Context, photoID, viewerUserID uuid.UUID, hasMatchOverride *bool) (*PrivacyControlResult, error) {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}

	// Moderation gate runs ahead of the decision table
	if photo.ModerationStatus == ModerationRejected {
		return nil, ErrPhotoRejected
	}

	var decision Decision
	if photo.ModerationStatus == ModerationFlagged {
		decision = Decision{
			Rendition:       RenditionBlurred,
			CanViewOriginal: false,
			Message:         "This photo is under moderation review",
		}
	} else {
		viewer, err := s.buildViewerContext(ctx, photo, viewerUserID, hasMatchOverride)
		if err != nil {
			return nil, err
		}
		decision = Evaluate(photo.Policy(), viewer)
	}

	result := &PrivacyControlResult{
		Photo:           photo,
		Rendition:       decision.Rendition,
		CanViewOriginal: decision.CanViewOriginal,
		Message:         decision.Message,
	}

	switch decision.Rendition {
	case RenditionOriginal:
		result.URL = s.store.GetURL(photo.Key)
		result.ContentType = photo.MimeType
	case RenditionBlurred:
		rendition, err := s.engine.GetOrCreate(ctx, photo.ID, photo.Key, photo.BlurIntensity)
		if err != nil {
			// Hard security invariant: a failed derivation is an
			// error, never the original bytes.
			return nil, err
		}
		s.recordBlurredKey(ctx, photo, rendition.Key)
		result.URL = s.store.GetURL(rendition.Key)
		result.ContentType = rendition.ContentType
	}

	return result, nil
}

// GetBlurred serves the blurred rendition directly, regardless of the
// viewer. Public-tier photos never have one.
func (s *Service) GetBlurred(ctx context.Context, photoID uuid.UUID) (*blur.Rendition, error) {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	if photo.ModerationStatus == ModerationRejected {
		return nil, ErrPhotoRejected
	}
	if photo.PrivacyLevel == PrivacyPublic {
		return nil, ErrNoBlurredVersion
	}

	rendition, err := s.engine.GetOrCreate(ctx, photo.ID, photo.Key, photo.BlurIntensity)
	if err != nil {
		return nil, err
	}
	s.recordBlurredKey(ctx, photo, rendition.Key)

	return rendition, nil
}

// UpdatePrivacy replaces the photo's policy wholesale. Only the owner
// may update; a changed blur intensity evicts the cached rendition so
// the next read derives with the new parameters.
func (s *Service) UpdatePrivacy(ctx context.Context, photoID, requestingUserID uuid.UUID, input PolicyInput) (*Photo, error) {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	if !photo.IsOwner(requestingUserID) {
		return nil, ErrNotPhotoOwner
	}

	newPolicy, err := NewPolicy(input, s.defaults)
	if err != nil {
		return nil, err
	}

	oldPolicy := photo.Policy()
	if newPolicy == oldPolicy {
		// Idempotent on identical input
		return photo, nil
	}

	now := time.Now()
	if err := s.repo.UpdatePolicy(ctx, photo.ID, newPolicy, now); err != nil {
		return nil, err
	}
	photo.SetPolicy(newPolicy)
	photo.UpdatedAt = now

	// Evict the stale rendition before the next read can observe it
	if oldPolicy.BlurIntensity != newPolicy.BlurIntensity || !newPolicy.Level.Restricted() {
		if err := s.engine.Invalidate(ctx, photo.ID, oldPolicy.BlurIntensity); err != nil {
			log.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("Failed to evict stale blurred rendition")
		}
		if err := s.repo.ClearBlurredKey(ctx, photo.ID); err != nil {
			log.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("Failed to clear blurred key")
		}
		photo.BlurredKey.Valid = false
		photo.BlurredKey.String = ""
	}

	s.schedulePrewarm(ctx, photo)

	log.Info().
		Str("photo_id", photo.ID.String()).
		Str("privacy_level", string(newPolicy.Level)).
		Float64("blur_intensity", newPolicy.BlurIntensity).
		Msg("Photo privacy policy updated")

	return photo, nil
}

// ListByOwner returns all photos owned by the given user
func (s *Service) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Photo, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// SetModerationStatus records a moderation verdict for a photo
func (s *Service) SetModerationStatus(ctx context.Context, photoID uuid.UUID, status ModerationStatus) (*Photo, error) {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}

	if err := s.repo.SetModerationStatus(ctx, photo.ID, status); err != nil {
		return nil, err
	}
	photo.ModerationStatus = status
	return photo, nil
}

func (s *Service) buildViewerContext(ctx context.Context, photo *Photo, viewerUserID uuid.UUID, hasMatchOverride *bool) (ViewerContext, error) {
	viewer := ViewerContext{
		ViewerUserID: viewerUserID,
		IsOwner:      photo.IsOwner(viewerUserID),
	}
	if viewer.IsOwner {
		return viewer, nil
	}

	if hasMatchOverride != nil {
		viewer.HasMatch = *hasMatchOverride
	} else {
		hasMatch, err := s.relationships.HasMatch(ctx, viewerUserID, photo.OwnerUserID)
		if err != nil {
			return ViewerContext{}, fmt.Errorf("failed to resolve match state: %w", err)
		}
		viewer.HasMatch = hasMatch
	}

	// VIP is never caller-supplied
	isVIP, err := s.relationships.IsVIP(ctx, viewerUserID)
	if err != nil {
		return ViewerContext{}, fmt.Errorf("failed to resolve VIP status: %w", err)
	}
	viewer.IsVIP = isVIP

	return viewer, nil
}

func (s *Service) recordBlurredKey(ctx context.Context, photo *Photo, key string) {
	if photo.BlurredKey.Valid && photo.BlurredKey.String == key {
		return
	}
	if err := s.repo.SetBlurredKey(ctx, photo.ID, key); err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("Failed to record blurred key")
		return
	}
	photo.BlurredKey.Valid = true
	photo.BlurredKey.String = key
}

// schedulePrewarm enqueues restricted photos for ahead-of-read
// derivation; Public photos never blur so there is nothing to warm
func (s *Service) schedulePrewarm(ctx context.Context, photo *Photo) {
	if s.prewarm == nil || !photo.PrivacyLevel.Restricted() {
		return
	}
	if err := s.prewarm.Enqueue(ctx, photo.ID); err != nil {
		log.Warn().Err(err).Str("photo_id", photo.ID.String()).Msg("Blur pre-warm enqueue failed")
	}
}
