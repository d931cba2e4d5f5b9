package relationships

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service answers relationship questions for the rest of the system:
// "do these two users have a mutual match" and "is this user VIP".
type Service struct {
	repo Repository
}

// NewService creates new relationships service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// HasMatch checks whether a mutual match exists between two users
func (s *Service) HasMatch(ctx context.Context, viewerID, ownerID uuid.UUID) (bool, error) {
	if viewerID == uuid.Nil || ownerID == uuid.Nil || viewerID == ownerID {
		return false, nil
	}
	return s.repo.HasMatch(ctx, viewerID, ownerID)
}

// IsVIP checks whether a user holds an active VIP membership
func (s *Service) IsVIP(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	status, err := s.repo.GetVIP(ctx, userID)
	if err != nil {
		return false, err
	}
	if status == nil {
		return false, nil
	}
	return status.Active(time.Now()), nil
}

// CreateMatch records a mutual match between two users
func (s *Service) CreateMatch(ctx context.Context, userX, userY uuid.UUID) (*Match, error) {
	if userX == userY {
		return nil, ErrSelfMatch
	}
	a, b := NormalizePair(userX, userY)
	match := &Match{
		ID:        uuid.New(),
		UserAID:   a,
		UserBID:   b,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// DeleteMatch removes a match between two users
func (s *Service) DeleteMatch(ctx context.Context, userX, userY uuid.UUID) error {
	return s.repo.DeleteMatch(ctx, userX, userY)
}

// ListMatches returns all matches involving the given user
func (s *Service) ListMatches(ctx context.Context, userID uuid.UUID) ([]*Match, error) {
	return s.repo.ListMatches(ctx, userID)
}

// GrantVIP grants (or refreshes) VIP membership
func (s *Service) GrantVIP(ctx context.Context, userID uuid.UUID, expiresAt *time.Time) error {
	return s.repo.GrantVIP(ctx, &VIPStatus{
		UserID:    userID,
		GrantedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
}

// RevokeVIP removes VIP membership
func (s *Service) RevokeVIP(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeVIP(ctx, userID)
}
