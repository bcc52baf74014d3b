package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// ListFilter narrows a request listing. Nil fields are ignored.
type ListFilter struct {
	OrganizationID uuid.UUID
	Status         *enums.RequestStatus
	LocationID     *uuid.UUID
	RequestedBy    *uuid.UUID
}

// Repository manages persistence for inventory requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.InventoryRequest) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryRequest, *pagination.Cursor, error)
	Respond(ctx context.Context, id uuid.UUID, status enums.RequestStatus, responderID uuid.UUID, notes *string, now time.Time) (bool, error)
	IsActiveManager(ctx context.Context, locationID, userID uuid.UUID) (bool, error)
	GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	GetLocation(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a requests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.InventoryRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
	var request models.InventoryRequest
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryRequest, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.InventoryRequest{}).
		Where("organization_id = ?", filter.OrganizationID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryRequest
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

// Respond flips a pending request to its terminal status. The status guard
// means only one responder can win; losers see zero rows affected.
func (r *repository) Respond(ctx context.Context, id uuid.UUID, status enums.RequestStatus, responderID uuid.UUID, notes *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":         status,
		"responded_by":   responderID,
		"responded_at":   now,
		"response_notes": notes,
	}
	result := r.db.WithContext(ctx).
		Model(&models.InventoryRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) IsActiveManager(ctx context.Context, locationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LocationManager{}).
		Where("location_id = ? AND user_id = ? AND revoked_at IS NULL", locationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
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

func (r *repository) GetLocation(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", locationID, orgID).
		First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}
