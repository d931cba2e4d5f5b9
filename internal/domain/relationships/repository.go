package relationships

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines relationships data access interface
type Repository interface {
	CreateMatch(ctx context.Context, match *Match) error
	DeleteMatch(ctx context.Context, userX, userY uuid.UUID) error
	HasMatch(ctx context.Context, userX, userY uuid.UUID) (bool, error)
	ListMatches(ctx context.Context, userID uuid.UUID) ([]*Match, error)
	GetVIP(ctx context.Context, userID uuid.UUID) (*VIPStatus, error)
	GrantVIP(ctx context.Context, status *VIPStatus) error
	RevokeVIP(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new relationships repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMatch(ctx context.Context, match *Match) error {
	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.UserAID,
		match.UserBID,
		match.CreatedAt,
	)
	return err
}

func (r *repository) DeleteMatch(ctx context.Context, userX, userY uuid.UUID) error {
	a, b := NormalizePair(userX, userY)
	query := `DELETE FROM matches WHERE user_a_id = $1 AND user_b_id = $2`
	_, err := r.db.ExecContext(ctx, query, a, b)
	return err
}

func (r *repository) HasMatch(ctx context.Context, userX, userY uuid.UUID) (bool, error) {
	a, b := NormalizePair(userX, userY)
	query := `SELECT EXISTS(SELECT 1 FROM matches WHERE user_a_id = $1 AND user_b_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, a, b)
	return exists, err
}

func (r *repository) ListMatches(ctx context.Context, userID uuid.UUID) ([]*Match, error) {
	query := `SELECT * FROM matches WHERE user_a_id = $1 OR user_b_id = $1 ORDER BY created_at DESC`
	var matches []*Match
	err := r.db.SelectContext(ctx, &matches, query, userID)
	return matches, err
}

func (r *repository) GetVIP(ctx context.Context, userID uuid.UUID) (*VIPStatus, error) {
	query := `SELECT * FROM vip_members WHERE user_id = $1`
	var status VIPStatus
	err := r.db.GetContext(ctx, &status, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *repository) GrantVIP(ctx context.Context, status *VIPStatus) error {
	query := `
		INSERT INTO vip_members (user_id, granted_at, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET granted_at = $2, expires_at = $3
	`
	var expiresAt interface{}
	if status.ExpiresAt != nil {
		expiresAt = *status.ExpiresAt
	}
	_, err := r.db.ExecContext(ctx, query, status.UserID, status.GrantedAt, expiresAt)
	return err
}

func (r *repository) RevokeVIP(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM vip_members WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
