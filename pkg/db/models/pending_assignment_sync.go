package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// PendingAssignmentSync is recorded when an adjustment committed but the
// follow-up assignment quantity update failed. The ledger write is the source
// of truth; these rows let the reconciler replay the secondary update instead
// of rolling anything back.
type PendingAssignmentSync struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssignmentID uuid.UUID        `gorm:"column:assignment_id;type:uuid;not null;index"`
	Delta        int              `gorm:"column:delta;not null"`
	Status       enums.SyncStatus `gorm:"column:status;type:sync_status;not null;default:pending;index"`
	Attempts     int              `gorm:"column:attempts;not null;default:0"`
	LastError    *string          `gorm:"column:last_error"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
