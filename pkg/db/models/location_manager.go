package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationManager grants a user management rights over one location.
// Revocation is soft so the grant history stays queryable.
type LocationManager struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LocationID uuid.UUID  `gorm:"column:location_id;type:uuid;not null;index"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	AssignedBy uuid.UUID  `gorm:"column:assigned_by;type:uuid;not null"`
	AssignedAt time.Time  `gorm:"column:assigned_at;autoCreateTime"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
}

// Active reports whether the grant still holds.
func (m LocationManager) Active() bool {
	return m.RevokedAt == nil
}
