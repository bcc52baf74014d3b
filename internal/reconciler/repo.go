package reconciler

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// Repository manages the queue of deferred assignment quantity syncs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListPending(ctx context.Context, limit int) ([]models.PendingAssignmentSync, error)
	MarkApplied(ctx context.Context, id uuid.UUID, attempts int) (bool, error)
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastError string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reconciler repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListPending returns the oldest pending syncs up to limit.
func (r *repository) ListPending(ctx context.Context, limit int) ([]models.PendingAssignmentSync, error) {
	var rows []models.PendingAssignmentSync
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SyncStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkApplied closes a pending sync after its delta landed. The status guard
// keeps a concurrent worker from flipping the same row twice.
func (r *repository) MarkApplied(ctx context.Context, id uuid.UUID, attempts int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingAssignmentSync{}).
		Where("id = ? AND status = ?", id, enums.SyncStatusPending).
		Updates(map[string]any{
			"status":     enums.SyncStatusApplied,
			"attempts":   attempts,
			"last_error": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRetry records a failed attempt while leaving the row pending.
func (r *repository) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastError string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingAssignmentSync{}).
		Where("id = ? AND status = ?", id, enums.SyncStatusPending).
		Updates(map[string]any{
			"attempts":   attempts,
			"last_error": lastError,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed parks a sync that exhausted its attempt budget.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingAssignmentSync{}).
		Where("id = ? AND status = ?", id, enums.SyncStatusPending).
		Updates(map[string]any{
			"status":     enums.SyncStatusFailed,
			"attempts":   attempts,
			"last_error": lastError,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
