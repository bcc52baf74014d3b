package ledger

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

type stubRepo struct {
	getItemFn     func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	casFn         func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error)
	createEntryFn func(ctx context.Context, entry *models.LedgerEntry) error
	listFn        func(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, *pagination.Cursor, error)
	recordSyncFn  func(ctx context.Context, sync *models.PendingAssignmentSync) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
	return s.getItemFn(ctx, orgID, itemID)
}

func (s *stubRepo) CompareAndSetQuantity(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
	return s.casFn(ctx, itemID, expected, next)
}

func (s *stubRepo) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if s.createEntryFn == nil {
		return nil
	}
	return s.createEntryFn(ctx, entry)
}

func (s *stubRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, *pagination.Cursor, error) {
	return s.listFn(ctx, itemID, limit, cursor)
}

func (s *stubRepo) RecordPendingSync(ctx context.Context, sync *models.PendingAssignmentSync) error {
	if s.recordSyncFn == nil {
		return nil
	}
	return s.recordSyncFn(ctx, sync)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSyncer struct {
	activeFn func(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error)
	adjustFn func(ctx context.Context, assignmentID uuid.UUID, delta int) error
}

func (s *stubSyncer) ActiveLocationAssignment(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error) {
	if s.activeFn == nil {
		return nil, nil
	}
	return s.activeFn(ctx, itemID, locationID)
}

func (s *stubSyncer) AdjustAssignedQuantity(ctx context.Context, assignmentID uuid.UUID, delta int) error {
	if s.adjustFn == nil {
		return nil
	}
	return s.adjustFn(ctx, assignmentID, delta)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository, syncer assignmentSyncer) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, syncer, testLogger(), nil, 3)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func TestApplyAdjustmentSaleDecreasesQuantity(t *testing.T) {
	orgID := uuid.New()
	itemID := uuid.New()
	actorID := uuid.New()

	var created *models.LedgerEntry
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, gotOrg, gotItem uuid.UUID) (*models.InventoryItem, error) {
			if gotOrg != orgID || gotItem != itemID {
				t.Fatalf("unexpected lookup org=%s item=%s", gotOrg, gotItem)
			}
			return &models.InventoryItem{ID: itemID, OrganizationID: orgID, Quantity: 5}, nil
		},
		casFn: func(ctx context.Context, gotItem uuid.UUID, expected, next int) (bool, error) {
			if expected != 5 || next != 2 {
				t.Fatalf("unexpected cas %d -> %d", expected, next)
			}
			return true, nil
		},
		createEntryFn: func(ctx context.Context, entry *models.LedgerEntry) error {
			created = entry
			return nil
		},
	}

	svc := newTestService(t, repo, &stubSyncer{})
	result, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: orgID,
		ItemID:         itemID,
		ActorID:        actorID,
		Action:         enums.StockActionSale,
		Quantity:       3,
	})
	if err != nil {
		t.Fatalf("ApplyAdjustment: %v", err)
	}
	if result.Item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", result.Item.Quantity)
	}
	if created == nil {
		t.Fatal("expected ledger entry insert")
	}
	if created.QuantityChange != -3 || created.QuantityAfter != 2 {
		t.Fatalf("entry change=%d after=%d", created.QuantityChange, created.QuantityAfter)
	}
	if created.ActorID != actorID {
		t.Fatalf("entry actor %s, want %s", created.ActorID, actorID)
	}
}

func TestApplyAdjustmentRestockIncreases(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 0}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
			if expected != 0 || next != 10 {
				t.Fatalf("unexpected cas %d -> %d", expected, next)
			}
			return true, nil
		},
	}

	svc := newTestService(t, repo, &stubSyncer{})
	result, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
		ActorID:        uuid.New(),
		Action:         enums.StockActionRestock,
		Quantity:       10,
	})
	if err != nil {
		t.Fatalf("ApplyAdjustment: %v", err)
	}
	if result.Item.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", result.Item.Quantity)
	}
}

func TestApplyAdjustmentValidation(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 2}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	cases := []struct {
		name  string
		input ApplyAdjustmentInput
	}{
		{
			name:  "zero quantity",
			input: ApplyAdjustmentInput{Action: enums.StockActionSale, Quantity: 0},
		},
		{
			name:  "negative quantity",
			input: ApplyAdjustmentInput{Action: enums.StockActionRestock, Quantity: -4},
		},
		{
			name:  "unknown action",
			input: ApplyAdjustmentInput{Action: enums.StockAction("shrinkage"), Quantity: 1},
		},
		{
			name:  "adjustment without direction",
			input: ApplyAdjustmentInput{Action: enums.StockActionAdjust, Quantity: 1},
		},
		{
			name:  "decrease past zero",
			input: ApplyAdjustmentInput{Action: enums.StockActionGiveaway, Quantity: 3},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ApplyAdjustment(context.Background(), tc.input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyAdjustmentNothingAvailable(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 0}, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	_, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
		ActorID:        uuid.New(),
		Action:         enums.StockActionSale,
		Quantity:       1,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyAdjustmentExplicitDirection(t *testing.T) {
	var next int
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 5}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, gotNext int) (bool, error) {
			next = gotNext
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	if _, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionAdjust, Quantity: 2, Direction: 1,
	}); err != nil {
		t.Fatalf("positive adjustment: %v", err)
	}
	if next != 7 {
		t.Fatalf("expected 7, got %d", next)
	}

	if _, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionAdjust, Quantity: 2, Direction: -1,
	}); err != nil {
		t.Fatalf("negative adjustment: %v", err)
	}
	if next != 3 {
		t.Fatalf("expected 3, got %d", next)
	}
}

func TestApplyAdjustmentRetriesThenConflicts(t *testing.T) {
	attempts := 0
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 5}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
			attempts++
			return false, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	_, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionSale, Quantity: 1,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts (1 + 3 retries), got %d", attempts)
	}
}

func TestApplyAdjustmentRecoversFromSingleConflict(t *testing.T) {
	attempts := 0
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 5}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
			attempts++
			return attempts > 1, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	result, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionSale, Quantity: 2,
	})
	if err != nil {
		t.Fatalf("ApplyAdjustment: %v", err)
	}
	if result.Item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", result.Item.Quantity)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestApplyAdjustmentInsufficientLocationStock(t *testing.T) {
	locationID := uuid.New()
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 50}, nil
		},
	}
	syncer := &stubSyncer{
		activeFn: func(ctx context.Context, itemID, gotLocation uuid.UUID) (*models.ItemAssignment, error) {
			if gotLocation != locationID {
				t.Fatalf("unexpected location %s", gotLocation)
			}
			return &models.ItemAssignment{ID: uuid.New(), QuantityAssigned: intPtr(2)}, nil
		},
	}
	svc := newTestService(t, repo, syncer)

	_, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionSale, Quantity: 5, LocationID: &locationID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestApplyAdjustmentSyncFailureQueuesReconciliation(t *testing.T) {
	locationID := uuid.New()
	assignmentID := uuid.New()

	var recorded *models.PendingAssignmentSync
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 10}, nil
		},
		casFn: func(ctx context.Context, itemID uuid.UUID, expected, next int) (bool, error) {
			return true, nil
		},
		recordSyncFn: func(ctx context.Context, sync *models.PendingAssignmentSync) error {
			recorded = sync
			return nil
		},
	}
	syncer := &stubSyncer{
		activeFn: func(ctx context.Context, itemID, gotLocation uuid.UUID) (*models.ItemAssignment, error) {
			return &models.ItemAssignment{ID: assignmentID, QuantityAssigned: intPtr(8)}, nil
		},
		adjustFn: func(ctx context.Context, gotAssignment uuid.UUID, delta int) error {
			return pkgerrors.New(pkgerrors.CodeDependency, "db down")
		},
	}
	svc := newTestService(t, repo, syncer)

	result, err := svc.ApplyAdjustment(context.Background(), ApplyAdjustmentInput{
		OrganizationID: uuid.New(), ItemID: uuid.New(), ActorID: uuid.New(),
		Action: enums.StockActionTransfer, Quantity: 3, LocationID: &locationID,
	})
	if err != nil {
		t.Fatalf("sync failure must not fail the adjustment: %v", err)
	}
	if result.Item.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", result.Item.Quantity)
	}
	if recorded == nil {
		t.Fatal("expected pending sync row")
	}
	if recorded.AssignmentID != assignmentID || recorded.Delta != -3 {
		t.Fatalf("pending sync assignment=%s delta=%d", recorded.AssignmentID, recorded.Delta)
	}
	if recorded.Status != enums.SyncStatusPending {
		t.Fatalf("pending sync status %s", recorded.Status)
	}
}

func TestListHistoryEncodesNextCursor(t *testing.T) {
	itemID := uuid.New()
	entry := models.LedgerEntry{ID: uuid.New(), ItemID: itemID}
	nextID := uuid.New()

	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, gotItem uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: gotItem}, nil
		},
		listFn: func(ctx context.Context, gotItem uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, *pagination.Cursor, error) {
			if gotItem != itemID {
				t.Fatalf("unexpected item %s", gotItem)
			}
			return []models.LedgerEntry{entry}, &pagination.Cursor{CreatedAt: entry.CreatedAt, ID: nextID}, nil
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	page, err := svc.ListHistory(context.Background(), ListHistoryInput{
		OrganizationID: uuid.New(),
		ItemID:         itemID,
	})
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(page.Entries))
	}
	decoded, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", page.NextCursor, err)
	}
	if decoded.ID != nextID {
		t.Fatalf("cursor id %s, want %s", decoded.ID, nextID)
	}
}

func TestListHistoryUnknownItem(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, &stubSyncer{})

	_, err := svc.ListHistory(context.Background(), ListHistoryInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
