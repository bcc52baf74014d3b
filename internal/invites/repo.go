package invites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
)

// Repository manages persistence for invited member profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invites repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", orgID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
