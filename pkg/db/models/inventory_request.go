package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// InventoryRequest is a location manager's ask for more stock at a location.
// Approving or denying a request records the decision only; it does not move
// stock or create assignments.
type InventoryRequest struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID    uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index"`
	LocationID        uuid.UUID           `gorm:"column:location_id;type:uuid;not null;index"`
	ItemID            uuid.UUID           `gorm:"column:item_id;type:uuid;not null;index"`
	QuantityRequested int                 `gorm:"column:quantity_requested;not null"`
	Status            enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:pending"`
	Notes             *string             `gorm:"column:notes"`
	RequestedBy       uuid.UUID           `gorm:"column:requested_by;type:uuid;not null"`
	RequestedAt       time.Time           `gorm:"column:requested_at;autoCreateTime"`
	RespondedBy       *uuid.UUID          `gorm:"column:responded_by;type:uuid"`
	RespondedAt       *time.Time          `gorm:"column:responded_at"`
	ResponseNotes     *string             `gorm:"column:response_notes"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
