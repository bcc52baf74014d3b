package fields

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
)

// Repository manages persistence for custom field definitions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, def *models.FieldDefinition) error
	Update(ctx context.Context, def *models.FieldDefinition) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.FieldDefinition, error)
	FindByName(ctx context.Context, orgID uuid.UUID, name string) (*models.FieldDefinition, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fields repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, def *models.FieldDefinition) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *repository) Update(ctx context.Context, def *models.FieldDefinition) error {
	return r.db.WithContext(ctx).Save(def).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.FieldDefinition, error) {
	var def models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repository) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*models.FieldDefinition, error) {
	var def models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND name = ?", orgID, name).
		First(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error) {
	var rows []models.FieldDefinition
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("display_order ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Delete(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.FieldDefinition{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
