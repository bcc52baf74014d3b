package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// LedgerEntry records one immutable quantity change against an item.
// QuantityAfter always equals the item quantity the change produced, so the
// history doubles as a consistency check on the live counter. Rows are
// append-only and never updated or deleted.
type LedgerEntry struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID         uuid.UUID         `gorm:"column:item_id;type:uuid;not null;index"`
	ActorID        uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	Action         enums.StockAction `gorm:"column:action;type:stock_action;not null"`
	QuantityChange int               `gorm:"column:quantity_change;not null"`
	QuantityAfter  int               `gorm:"column:quantity_after;not null"`
	LocationName   *string           `gorm:"column:location_name"`
	Address        *string           `gorm:"column:address"`
	Latitude       *float64          `gorm:"column:latitude"`
	Longitude      *float64          `gorm:"column:longitude"`
	Notes          *string           `gorm:"column:notes"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the historical table name used by existing deployments.
func (LedgerEntry) TableName() string {
	return "location_history"
}
