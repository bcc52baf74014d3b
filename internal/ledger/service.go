package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/metrics"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

const defaultMaxConflictRetries = 3

// Service applies stock adjustments and reads the resulting history.
type Service interface {
	ApplyAdjustment(ctx context.Context, input ApplyAdjustmentInput) (*AdjustmentResult, error)
	ListHistory(ctx context.Context, input ListHistoryInput) (*HistoryPage, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// assignmentSyncer is the slice of the assignments service the ledger needs
// for the post-commit quantity sync.
type assignmentSyncer interface {
	ActiveLocationAssignment(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error)
	AdjustAssignedQuantity(ctx context.Context, assignmentID uuid.UUID, delta int) error
}

type service struct {
	repo       Repository
	tx         txRunner
	syncer     assignmentSyncer
	logg       *logger.Logger
	metrics    *metrics.LedgerMetrics
	maxRetries int
}

// NewService wires the ledger service. The metrics instance may be nil.
func NewService(repo Repository, tx txRunner, syncer assignmentSyncer, logg *logger.Logger, m *metrics.LedgerMetrics, maxConflictRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if syncer == nil {
		return nil, fmt.Errorf("assignment syncer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxConflictRetries <= 0 {
		maxConflictRetries = defaultMaxConflictRetries
	}
	return &service{
		repo:       repo,
		tx:         tx,
		syncer:     syncer,
		logg:       logg,
		metrics:    m,
		maxRetries: maxConflictRetries,
	}, nil
}

// ApplyAdjustment moves an item's quantity and appends the matching ledger
// entry in one transaction. The quantity write is a compare-and-set: a
// concurrent writer causes a bounded retry, and exhausting the retries
// surfaces as a conflict rather than a lost or negative update.
func (s *service) ApplyAdjustment(ctx context.Context, input ApplyAdjustmentInput) (*AdjustmentResult, error) {
	start := time.Now()

	delta, err := s.resolveDelta(input)
	if err != nil {
		s.metrics.ObserveAdjustment(input.Action.String(), "rejected", time.Since(start))
		return nil, err
	}

	assignment, err := s.checkLocationStock(ctx, input, delta)
	if err != nil {
		s.metrics.ObserveAdjustment(input.Action.String(), "rejected", time.Since(start))
		return nil, err
	}

	var (
		item  *models.InventoryItem
		entry *models.LedgerEntry
	)

	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		current, err := s.repo.GetItem(ctx, input.OrganizationID, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		next := current.Quantity + delta
		if next < 0 {
			if current.Quantity == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "nothing available to remove").
					WithDetails(map[string]any{"item_id": input.ItemID, "requested": input.Quantity, "available": 0})
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity change exceeds available stock").
				WithDetails(map[string]any{"item_id": input.ItemID, "requested": input.Quantity, "available": current.Quantity})
		}

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			applied, err := repo.CompareAndSetQuantity(ctx, current.ID, current.Quantity, next)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item quantity")
			}
			if !applied {
				s.metrics.IncConflict()
				return pkgerrors.New(pkgerrors.CodeConflict, "item quantity changed concurrently").
					WithDetails(map[string]any{"item_id": input.ItemID})
			}

			record := &models.LedgerEntry{
				ItemID:         current.ID,
				ActorID:        input.ActorID,
				Action:         input.Action,
				QuantityChange: delta,
				QuantityAfter:  next,
				LocationName:   input.LocationName,
				Address:        input.Address,
				Latitude:       input.Latitude,
				Longitude:      input.Longitude,
				Notes:          input.Notes,
			}
			if err := repo.CreateEntry(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger entry")
			}
			entry = record
			return nil
		})
		if txErr != nil {
			if pkgerrors.IsCode(txErr, pkgerrors.CodeConflict) {
				return retry.RetryableError(txErr)
			}
			return txErr
		}

		current.Quantity = next
		item = current
		return nil
	})
	if err != nil {
		outcome := "failed"
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			outcome = "conflict"
		}
		s.metrics.ObserveAdjustment(input.Action.String(), outcome, time.Since(start))
		return nil, err
	}

	// The committed write above is the source of truth. The assignment
	// quantity update is a secondary effect and must never roll it back.
	s.syncAssignment(ctx, assignment, delta)

	s.metrics.ObserveAdjustment(input.Action.String(), "applied", time.Since(start))
	return &AdjustmentResult{Item: item, Entry: entry}, nil
}

func (s *service) resolveDelta(input ApplyAdjustmentInput) (int, error) {
	if !input.Action.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock action %q", input.Action))
	}
	if input.Quantity <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive whole number").
			WithDetails(map[string]any{"requested": input.Quantity})
	}

	switch {
	case input.Action.Decreases():
		return -input.Quantity, nil
	case input.Action.Increases():
		return input.Quantity, nil
	default:
		// Adjustments carry no implied sign.
		switch input.Direction {
		case 1:
			return input.Quantity, nil
		case -1:
			return -input.Quantity, nil
		default:
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "adjustment requires direction +1 or -1")
		}
	}
}

// checkLocationStock loads the active assignment for the adjustment's
// location, if any, and rejects decreases that exceed what the location
// actually holds.
func (s *service) checkLocationStock(ctx context.Context, input ApplyAdjustmentInput, delta int) (*models.ItemAssignment, error) {
	if input.LocationID == nil {
		return nil, nil
	}

	assignment, err := s.syncer.ActiveLocationAssignment(ctx, input.ItemID, *input.LocationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location assignment")
	}
	if assignment == nil || assignment.QuantityAssigned == nil {
		return assignment, nil
	}

	if delta < 0 && -delta > *assignment.QuantityAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "location does not hold enough stock").
			WithDetails(map[string]any{
				"location_id": *input.LocationID,
				"requested":   -delta,
				"available":   *assignment.QuantityAssigned,
			})
	}
	return assignment, nil
}

// syncAssignment applies the delta to the location assignment after commit.
// Failures are queued for the reconciler instead of propagating.
func (s *service) syncAssignment(ctx context.Context, assignment *models.ItemAssignment, delta int) {
	if assignment == nil || assignment.QuantityAssigned == nil {
		return
	}

	err := s.syncer.AdjustAssignedQuantity(ctx, assignment.ID, delta)
	if err == nil {
		return
	}

	msg := err.Error()
	sync := &models.PendingAssignmentSync{
		AssignmentID: assignment.ID,
		Delta:        delta,
		Status:       enums.SyncStatusPending,
		LastError:    &msg,
	}
	if recordErr := s.repo.RecordPendingSync(ctx, sync); recordErr != nil {
		s.logg.Error(ctx, "recording pending assignment sync", recordErr)
		return
	}
	s.metrics.IncSyncQueued()
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"assignment_id": assignment.ID.String(),
		"delta":         delta,
	}), "assignment quantity sync deferred to reconciler")
}

func (s *service) ListHistory(ctx context.Context, input ListHistoryInput) (*HistoryPage, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	// Scope check so one org cannot page another org's history.
	if _, err := s.repo.GetItem(ctx, input.OrganizationID, input.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	var cursor *pagination.Cursor
	if input.Pagination.Cursor != "" {
		parsed, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	entries, next, err := s.repo.ListByItem(ctx, input.ItemID, input.Pagination.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	page := &HistoryPage{Entries: entries}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}
