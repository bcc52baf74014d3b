package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// ListFilter narrows an item listing. Search matches name and SKU.
type ListFilter struct {
	OrganizationID uuid.UUID
	Search         string
	Category       *string
}

// Repository manages persistence for inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryItem, *pagination.Cursor, error)
	SoftDelete(ctx context.Context, orgID, id uuid.UUID) (bool, error)
	HardDelete(ctx context.Context, orgID, id uuid.UUID) (bool, error)
	ListFieldDefinitions(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an items repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryItem, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("organization_id = ?", filter.OrganizationID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryItem
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) SoftDelete(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) HardDelete(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListFieldDefinitions(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error) {
	var defs []models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("display_order ASC").
		Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}
