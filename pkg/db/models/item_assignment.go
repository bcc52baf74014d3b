package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemAssignment allocates part of an item's stock to a user or a location.
// Exactly one of UserID/LocationID is set. A NULL QuantityAssigned means the
// assignment is informational and does not reserve a specific amount.
// Assignments are revoked, never deleted.
type ItemAssignment struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID           uuid.UUID  `gorm:"column:item_id;type:uuid;not null;index"`
	UserID           *uuid.UUID `gorm:"column:user_id;type:uuid"`
	LocationID       *uuid.UUID `gorm:"column:location_id;type:uuid"`
	AssignedBy       uuid.UUID  `gorm:"column:assigned_by;type:uuid;not null"`
	QuantityAssigned *int       `gorm:"column:quantity_assigned"`
	Notes            *string    `gorm:"column:notes"`
	AssignedAt       time.Time  `gorm:"column:assigned_at;autoCreateTime"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
}

// Active reports whether the assignment still holds.
func (a ItemAssignment) Active() bool {
	return a.RevokedAt == nil
}
