package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem tracks a stock-counted unit. Quantity is only ever mutated
// through the ledger so that every change leaves an audit entry behind.
type InventoryItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	Name           string          `gorm:"column:name;not null"`
	SKU            *string         `gorm:"column:sku"`
	Category       *string         `gorm:"column:category"`
	Quantity       int             `gorm:"column:quantity;not null;default:0"`
	CustomFields   json.RawMessage `gorm:"column:custom_fields;type:jsonb"`
	CreatedBy      *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}
