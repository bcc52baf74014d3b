package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:ledgerrepo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  category TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  custom_fields TEXT,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS location_history (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  action TEXT NOT NULL,
  quantity_change INTEGER NOT NULL,
  quantity_after INTEGER NOT NULL,
  location_name TEXT,
  address TEXT,
  latitude REAL,
  longitude REAL,
  notes TEXT,
  created_at DATETIME
);`
	syncs := `
CREATE TABLE IF NOT EXISTS pending_assignment_syncs (
  id TEXT PRIMARY KEY,
  assignment_id TEXT NOT NULL,
  delta INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{items, history, syncs} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM pending_assignment_syncs")
		db.Exec("DELETE FROM location_history")
		db.Exec("DELETE FROM inventory_items")
	})
	return db
}

func mustCreateTestItem(t *testing.T, db *gorm.DB, orgID uuid.UUID, quantity int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "Test Item",
		Quantity:       quantity,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryCompareAndSetQuantity(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateTestItem(t, db, uuid.New(), 5)

	applied, err := repo.CompareAndSetQuantity(ctx, item.ID, 5, 2)
	require.NoError(t, err)
	assert.True(t, applied)

	// Stale expectation loses.
	applied, err = repo.CompareAndSetQuantity(ctx, item.ID, 5, 0)
	require.NoError(t, err)
	assert.False(t, applied)

	var current models.InventoryItem
	require.NoError(t, db.First(&current, "id = ?", item.ID).Error)
	assert.Equal(t, 2, current.Quantity)
}

func TestRepositoryGetItemScopedToOrganization(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	item := mustCreateTestItem(t, db, orgID, 3)

	found, err := repo.GetItem(ctx, orgID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	_, err = repo.GetItem(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByItemPagesNewestFirst(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := mustCreateTestItem(t, db, uuid.New(), 10)
	actor := uuid.New()

	base := time.Now().Add(-time.Hour).UTC()
	for i := 0; i < 3; i++ {
		entry := &models.LedgerEntry{
			ID:             uuid.New(),
			ItemID:         item.ID,
			ActorID:        actor,
			Action:         enums.StockActionSale,
			QuantityChange: -1,
			QuantityAfter:  10 - i - 1,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(entry).Error)
	}

	entries, next, err := repo.ListByItem(ctx, item.ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, next)
	assert.Equal(t, 7, entries[0].QuantityAfter) // newest entry first

	rest, next, err := repo.ListByItem(ctx, item.ID, 2, next)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
	assert.True(t, entries[1].CreatedAt.After(rest[0].CreatedAt))

	// Every entry surfaces exactly once; the page boundary row must not be
	// skipped by the cursor predicate.
	seen := map[uuid.UUID]bool{}
	for _, entry := range append(entries, rest...) {
		assert.False(t, seen[entry.ID])
		seen[entry.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestRepositoryRecordPendingSync(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sync := &models.PendingAssignmentSync{
		ID:           uuid.New(),
		AssignmentID: uuid.New(),
		Delta:        -2,
		Status:       enums.SyncStatusPending,
	}
	require.NoError(t, repo.RecordPendingSync(ctx, sync))

	var stored models.PendingAssignmentSync
	require.NoError(t, db.First(&stored, "id = ?", sync.ID).Error)
	assert.Equal(t, -2, stored.Delta)
	assert.Equal(t, enums.SyncStatusPending, stored.Status)
}
