package relationships

import (
	"time"

	"github.com/google/uuid"
)

// Match represents a mutual match between two users.
// The pair is stored normalized (UserAID < UserBID lexicographically)
// so one row answers the question for both directions.
type Match struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserAID   uuid.UUID `db:"user_a_id" json:"user_a_id"`
	UserBID   uuid.UUID `db:"user_b_id" json:"user_b_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// VIPStatus represents a user's VIP membership
type VIPStatus struct {
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	GrantedAt time.Time  `db:"granted_at" json:"granted_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Active returns true if the VIP membership has not expired
func (v *VIPStatus) Active(now time.Time) bool {
	return v.ExpiresAt == nil || now.Before(*v.ExpiresAt)
}

// NormalizePair orders two user IDs into the canonical (a, b) storage order
func NormalizePair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if x.String() < y.String() {
		return x, y
	}
	return y, x
}
