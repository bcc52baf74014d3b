package locations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
)

// Repository manages persistence for locations and manager grants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, location *models.Location) error
	Update(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Location, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Location, error)
	ActiveGrant(ctx context.Context, locationID, userID uuid.UUID) (*models.LocationManager, error)
	CreateGrant(ctx context.Context, grant *models.LocationManager) error
	RevokeGrant(ctx context.Context, grantID uuid.UUID, now time.Time) (bool, error)
	FindGrant(ctx context.Context, grantID uuid.UUID) (*models.LocationManager, error)
	ListActiveGrants(ctx context.Context, locationID uuid.UUID) ([]models.LocationManager, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a locations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) Update(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Location, error) {
	var rows []models.Location
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ActiveGrant(ctx context.Context, locationID, userID uuid.UUID) (*models.LocationManager, error) {
	var grant models.LocationManager
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND user_id = ? AND revoked_at IS NULL", locationID, userID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *repository) CreateGrant(ctx context.Context, grant *models.LocationManager) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repository) RevokeGrant(ctx context.Context, grantID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LocationManager{}).
		Where("id = ? AND revoked_at IS NULL", grantID).
		UpdateColumn("revoked_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindGrant(ctx context.Context, grantID uuid.UUID) (*models.LocationManager, error) {
	var grant models.LocationManager
	if err := r.db.WithContext(ctx).First(&grant, "id = ?", grantID).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *repository) ListActiveGrants(ctx context.Context, locationID uuid.UUID) ([]models.LocationManager, error) {
	var rows []models.LocationManager
	if err := r.db.WithContext(ctx).
		Where("location_id = ? AND revoked_at IS NULL", locationID).
		Order("assigned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
