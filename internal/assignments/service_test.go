package assignments

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

type stubRepo struct {
	createFn     func(ctx context.Context, assignment *models.ItemAssignment) error
	findFn       func(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error)
	getItemFn    func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	listActiveFn func(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error)
	activeLocFn  func(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error)
	revokeFn     func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	adjustFn     func(ctx context.Context, id uuid.UUID, delta int) (bool, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, assignment *models.ItemAssignment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, assignment)
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error) {
	return s.findFn(ctx, id)
}

func (s *stubRepo) GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
	return s.getItemFn(ctx, orgID, itemID)
}

func (s *stubRepo) ListActiveByItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx, itemID)
}

func (s *stubRepo) ActiveByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error) {
	return s.activeLocFn(ctx, itemID, locationID)
}

func (s *stubRepo) Revoke(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	return s.revokeFn(ctx, id, now)
}

func (s *stubRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	return s.adjustFn(ctx, id, delta)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func idPtr(v uuid.UUID) *uuid.UUID { return &v }

func itemRepo(quantity int, assigned ...int) *stubRepo {
	return &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, OrganizationID: orgID, Quantity: quantity}, nil
		},
		listActiveFn: func(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error) {
			rows := make([]models.ItemAssignment, 0, len(assigned))
			for _, qty := range assigned {
				q := qty
				rows = append(rows, models.ItemAssignment{ID: uuid.New(), ItemID: itemID, QuantityAssigned: &q})
			}
			return rows, nil
		},
	}
}

func TestCreateAssignmentTargetValidation(t *testing.T) {
	svc := newTestService(t, itemRepo(10))
	userID := uuid.New()
	locationID := uuid.New()

	cases := []struct {
		name  string
		input CreateAssignmentInput
	}{
		{name: "neither target", input: CreateAssignmentInput{ItemID: uuid.New()}},
		{name: "both targets", input: CreateAssignmentInput{ItemID: uuid.New(), UserID: &userID, LocationID: &locationID}},
		{name: "zero quantity", input: CreateAssignmentInput{ItemID: uuid.New(), UserID: &userID, Quantity: intPtr(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAssignment(context.Background(), tc.input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateAssignmentExceedsAvailable(t *testing.T) {
	// quantity 5, 3 already assigned, so only 2 available
	svc := newTestService(t, itemRepo(5, 3))

	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
		UserID:         idPtr(uuid.New()),
		AssignedBy:     uuid.New(),
		Quantity:       intPtr(3),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAssignmentUnboundedRequiresAvailability(t *testing.T) {
	svc := newTestService(t, itemRepo(4, 2, 2))

	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
		UserID:         idPtr(uuid.New()),
		AssignedBy:     uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAssignmentSucceeds(t *testing.T) {
	repo := itemRepo(10, 4)
	var created *models.ItemAssignment
	repo.createFn = func(ctx context.Context, assignment *models.ItemAssignment) error {
		created = assignment
		return nil
	}
	svc := newTestService(t, repo)

	userID := uuid.New()
	assignment, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		OrganizationID: uuid.New(),
		ItemID:         uuid.New(),
		UserID:         &userID,
		AssignedBy:     uuid.New(),
		Quantity:       intPtr(6),
	})
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if created == nil {
		t.Fatal("expected repo create call")
	}
	if assignment.UserID == nil || *assignment.UserID != userID {
		t.Fatalf("assignment user %v, want %s", assignment.UserID, userID)
	}
	if assignment.QuantityAssigned == nil || *assignment.QuantityAssigned != 6 {
		t.Fatalf("assignment quantity %v, want 6", assignment.QuantityAssigned)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	assignmentID := uuid.New()
	revokedAt := time.Now().Add(-time.Hour)
	repo := &stubRepo{
		revokeFn: func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
			return false, nil
		},
		findFn: func(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error) {
			return &models.ItemAssignment{ID: id, RevokedAt: &revokedAt}, nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.Revoke(context.Background(), assignmentID); err != nil {
		t.Fatalf("second revoke must be a no-op success: %v", err)
	}
}

func TestRevokeUnknownAssignment(t *testing.T) {
	repo := &stubRepo{
		revokeFn: func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
			return false, nil
		},
		findFn: func(ctx context.Context, id uuid.UUID) (*models.ItemAssignment, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo)

	err := svc.Revoke(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAvailabilityReportsOverAssignment(t *testing.T) {
	// 7 assigned against a quantity of 5: warn, clamp available to 0
	svc := newTestService(t, itemRepo(5, 4, 3))

	report, err := svc.Availability(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if report.TotalAssigned != 7 {
		t.Fatalf("total assigned %d, want 7", report.TotalAssigned)
	}
	if report.Available != 0 {
		t.Fatalf("available %d, want 0", report.Available)
	}
	if !report.OverAssigned {
		t.Fatal("expected over-assigned flag")
	}
}

func TestAvailabilityIgnoresUntrackedQuantities(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return &models.InventoryItem{ID: itemID, Quantity: 8}, nil
		},
		listActiveFn: func(ctx context.Context, itemID uuid.UUID) ([]models.ItemAssignment, error) {
			return []models.ItemAssignment{
				{ID: uuid.New(), QuantityAssigned: intPtr(3)},
				{ID: uuid.New(), QuantityAssigned: nil}, // unbounded, counts as zero
			}, nil
		},
	}
	svc := newTestService(t, repo)

	report, err := svc.Availability(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if report.TotalAssigned != 3 {
		t.Fatalf("total assigned %d, want 3", report.TotalAssigned)
	}
	if report.Available != 5 {
		t.Fatalf("available %d, want 5", report.Available)
	}
	if report.OverAssigned {
		t.Fatal("unexpected over-assigned flag")
	}
}

func TestAdjustAssignedQuantityZeroDeltaSkipsRepo(t *testing.T) {
	called := false
	repo := &stubRepo{
		adjustFn: func(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
			called = true
			return true, nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.AdjustAssignedQuantity(context.Background(), uuid.New(), 0); err != nil {
		t.Fatalf("AdjustAssignedQuantity: %v", err)
	}
	if called {
		t.Fatal("zero delta must not touch the repository")
	}
}
