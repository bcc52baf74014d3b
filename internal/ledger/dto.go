package ledger

import (
	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// ApplyAdjustmentInput captures one requested stock movement. Quantity is the
// magnitude; the action determines the sign except for "adjustment", which
// carries no implied direction and requires Direction to be +1 or -1.
type ApplyAdjustmentInput struct {
	OrganizationID uuid.UUID
	ItemID         uuid.UUID
	ActorID        uuid.UUID
	Action         enums.StockAction
	Quantity       int
	Direction      int
	LocationID     *uuid.UUID
	LocationName   *string
	Address        *string
	Latitude       *float64
	Longitude      *float64
	Notes          *string
}

// AdjustmentResult returns the committed state after an adjustment.
type AdjustmentResult struct {
	Item  *models.InventoryItem `json:"item"`
	Entry *models.LedgerEntry   `json:"entry"`
}

// ListHistoryInput pages through an item's ledger, newest first.
type ListHistoryInput struct {
	OrganizationID uuid.UUID
	ItemID         uuid.UUID
	Pagination     pagination.Params
}

// HistoryPage is one page of ledger entries plus the cursor for the next.
type HistoryPage struct {
	Entries    []models.LedgerEntry `json:"entries"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
