package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
)

// Repository manages persistence for item assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.ItemAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error)
	GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	ListActiveByItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error)
	ActiveByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error)
	Revoke(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an assignments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.ItemAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error) {
	var assignment models.ItemAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
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

func (r *repository) ListActiveByItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error) {
	var rows []models.ItemAssignment
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND revoked_at IS NULL", itemID).
		Order("assigned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ActiveByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error) {
	var assignment models.ItemAssignment
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND location_id = ? AND revoked_at IS NULL", itemID, locationID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// Revoke soft-deletes the assignment. The revoked_at guard makes a second
// revoke a no-op, which is what keeps the operation idempotent.
func (r *repository) Revoke(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ItemAssignment{}).
		Where("id = ? AND revoked_at IS NULL", id).
		UpdateColumn("revoked_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdjustQuantity applies a signed delta to quantity_assigned, floored at
// zero. Assignments without a tracked quantity are left untouched.
func (r *repository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ItemAssignment{}).
		Where("id = ? AND revoked_at IS NULL AND quantity_assigned IS NOT NULL", id).
		UpdateColumn("quantity_assigned", gorm.Expr(
			"CASE WHEN quantity_assigned + ? < 0 THEN 0 ELSE quantity_assigned + ? END", delta, delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
