package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// Repository manages persistence for ledger entries and the item quantity
// counter they guard.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	CompareAndSetQuantity(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error)
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, *pagination.Cursor, error)
	RecordPendingSync(ctx context.Context, sync *models.PendingAssignmentSync) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", itemID, orgID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CompareAndSetQuantity moves the quantity counter only if nobody else wrote
// it since the caller read `expected`. A false return means the counter moved
// underneath us and the caller should re-read and retry.
func (r *repository) CompareAndSetQuantity(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity = ?", itemID, expected).
		UpdateColumn("quantity", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("item_id = ?", itemID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	if len(entries) > normalized {
		entries = entries[:normalized]
		last := entries[normalized-1]
		return entries, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return entries, nil, nil
}

func (r *repository) RecordPendingSync(ctx context.Context, sync *models.PendingAssignmentSync) error {
	return r.db.WithContext(ctx).Create(sync).Error
}
