package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

type stubRepo struct {
	createFn    func(ctx context.Context, request *models.InventoryRequest) error
	findFn      func(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error)
	listFn      func(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryRequest, *pagination.Cursor, error)
	respondFn   func(ctx context.Context, id uuid.UUID, status enums.RequestStatus, responderID uuid.UUID, notes *string, now time.Time) (bool, error)
	isManagerFn func(ctx context.Context, locationID, userID uuid.UUID) (bool, error)
	getItemFn   func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	getLocFn    func(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, request *models.InventoryRequest) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, request)
}

func (s *stubRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
	return s.findFn(ctx, orgID, id)
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryRequest, *pagination.Cursor, error) {
	if s.listFn == nil {
		return nil, nil, nil
	}
	return s.listFn(ctx, filter, limit, cursor)
}

func (s *stubRepo) Respond(ctx context.Context, id uuid.UUID, status enums.RequestStatus, responderID uuid.UUID, notes *string, now time.Time) (bool, error) {
	if s.respondFn == nil {
		return true, nil
	}
	return s.respondFn(ctx, id, status, responderID, notes, now)
}

func (s *stubRepo) IsActiveManager(ctx context.Context, locationID, userID uuid.UUID) (bool, error) {
	if s.isManagerFn == nil {
		return true, nil
	}
	return s.isManagerFn(ctx, locationID, userID)
}

func (s *stubRepo) GetItem(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if s.getItemFn == nil {
		return &models.InventoryItem{ID: itemID, OrganizationID: orgID}, nil
	}
	return s.getItemFn(ctx, orgID, itemID)
}

func (s *stubRepo) GetLocation(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error) {
	if s.getLocFn == nil {
		return &models.Location{ID: locationID, OrganizationID: orgID}, nil
	}
	return s.getLocFn(ctx, orgID, locationID)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validSubmit() SubmitInput {
	return SubmitInput{
		OrganizationID: uuid.New(),
		LocationID:     uuid.New(),
		ItemID:         uuid.New(),
		RequestedBy:    uuid.New(),
		Quantity:       5,
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	var created *models.InventoryRequest
	repo := &stubRepo{
		createFn: func(ctx context.Context, request *models.InventoryRequest) error {
			created = request
			return nil
		},
	}
	svc := newTestService(t, repo)

	input := validSubmit()
	request, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created == nil {
		t.Fatal("expected repo create call")
	}
	if request.Status != enums.RequestStatusPending {
		t.Fatalf("status %s, want pending", request.Status)
	}
	if request.QuantityRequested != 5 {
		t.Fatalf("quantity %d, want 5", request.QuantityRequested)
	}
	if request.RequestedBy != input.RequestedBy {
		t.Fatalf("requested_by %s, want %s", request.RequestedBy, input.RequestedBy)
	}
}

func TestSubmitRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	for _, quantity := range []int{0, -3} {
		input := validSubmit()
		input.Quantity = quantity
		_, err := svc.Submit(context.Background(), input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("quantity %d: expected validation error, got %v", quantity, err)
		}
	}
}

func TestSubmitRequiresActiveManager(t *testing.T) {
	repo := &stubRepo{
		isManagerFn: func(ctx context.Context, locationID, userID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Submit(context.Background(), validSubmit())
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubmitUnknownItem(t *testing.T) {
	repo := &stubRepo{
		getItemFn: func(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Submit(context.Background(), validSubmit())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveTransitionsPendingRequest(t *testing.T) {
	requestID := uuid.New()
	responderID := uuid.New()
	notes := "ship from main warehouse"

	repo := &stubRepo{
		findFn: func(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
			return &models.InventoryRequest{ID: id, Status: enums.RequestStatusPending}, nil
		},
		respondFn: func(ctx context.Context, id uuid.UUID, status enums.RequestStatus, gotResponder uuid.UUID, gotNotes *string, now time.Time) (bool, error) {
			if status != enums.RequestStatusApproved {
				t.Fatalf("status %s, want approved", status)
			}
			if gotResponder != responderID {
				t.Fatalf("responder %s, want %s", gotResponder, responderID)
			}
			return true, nil
		},
	}
	svc := newTestService(t, repo)

	request, err := svc.Approve(context.Background(), RespondInput{
		OrganizationID: uuid.New(),
		RequestID:      requestID,
		ResponderID:    responderID,
		Notes:          &notes,
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if request.Status != enums.RequestStatusApproved {
		t.Fatalf("status %s, want approved", request.Status)
	}
	if request.RespondedBy == nil || *request.RespondedBy != responderID {
		t.Fatalf("responded_by %v, want %s", request.RespondedBy, responderID)
	}
}

func TestRespondRejectsTerminalStatus(t *testing.T) {
	repo := &stubRepo{
		findFn: func(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
			return &models.InventoryRequest{ID: id, Status: enums.RequestStatusDenied}, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Approve(context.Background(), RespondInput{
		OrganizationID: uuid.New(),
		RequestID:      uuid.New(),
		ResponderID:    uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRespondLosesRaceToAnotherResponder(t *testing.T) {
	repo := &stubRepo{
		findFn: func(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
			return &models.InventoryRequest{ID: id, Status: enums.RequestStatusPending}, nil
		},
		respondFn: func(ctx context.Context, id uuid.UUID, status enums.RequestStatus, responderID uuid.UUID, notes *string, now time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Deny(context.Background(), RespondInput{
		OrganizationID: uuid.New(),
		RequestID:      uuid.New(),
		ResponderID:    uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDenyRecordsDecisionOnly(t *testing.T) {
	createCalled := false
	repo := &stubRepo{
		createFn: func(ctx context.Context, request *models.InventoryRequest) error {
			createCalled = true
			return nil
		},
		findFn: func(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryRequest, error) {
			return &models.InventoryRequest{ID: id, Status: enums.RequestStatusPending, QuantityRequested: 4}, nil
		},
	}
	svc := newTestService(t, repo)

	request, err := svc.Deny(context.Background(), RespondInput{
		OrganizationID: uuid.New(),
		RequestID:      uuid.New(),
		ResponderID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if request.Status != enums.RequestStatusDenied {
		t.Fatalf("status %s, want denied", request.Status)
	}
	if createCalled {
		t.Fatal("deny must not create inventory side effects")
	}
}

func TestListRequiresOrganization(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.List(context.Background(), ListInput{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
