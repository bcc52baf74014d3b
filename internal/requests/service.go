package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// Service handles request intake and the approve/deny decision flow.
// Approving or denying records the decision only; moving the stock stays a
// separate, explicit ledger operation.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.InventoryRequest, error)
	Approve(ctx context.Context, input RespondInput) (*models.InventoryRequest, error)
	Deny(ctx context.Context, input RespondInput) (*models.InventoryRequest, error)
	List(ctx context.Context, input ListInput) (*Page, error)
}

// SubmitInput asks for stock at a location the requester manages.
type SubmitInput struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	ItemID         uuid.UUID
	RequestedBy    uuid.UUID
	Quantity       int
	Notes          *string
}

// RespondInput carries an admin's decision on a pending request.
type RespondInput struct {
	OrganizationID uuid.UUID
	RequestID      uuid.UUID
	ResponderID    uuid.UUID
	Notes          *string
}

// ListInput filters and pages the request listing.
type ListInput struct {
	Filter     ListFilter
	Pagination pagination.Params
}

// Page is one page of requests plus the cursor for the next.
type Page struct {
	Requests   []models.InventoryRequest `json:"requests"`
	NextCursor string                    `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires the requests service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.InventoryRequest, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive whole number").
			WithDetails(map[string]any{"requested": input.Quantity})
	}

	if _, err := s.repo.GetItem(ctx, input.OrganizationID, input.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if _, err := s.repo.GetLocation(ctx, input.OrganizationID, input.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}

	manages, err := s.repo.IsActiveManager(ctx, input.LocationID, input.RequestedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check location manager")
	}
	if !manages {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "requester does not manage this location").
			WithDetails(map[string]any{"location_id": input.LocationID})
	}

	request := &models.InventoryRequest{
		OrganizationID:    input.OrganizationID,
		LocationID:        input.LocationID,
		ItemID:            input.ItemID,
		QuantityRequested: input.Quantity,
		Status:            enums.RequestStatusPending,
		Notes:             input.Notes,
		RequestedBy:       input.RequestedBy,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}
	return request, nil
}

func (s *service) Approve(ctx context.Context, input RespondInput) (*models.InventoryRequest, error) {
	return s.respond(ctx, input, enums.RequestStatusApproved)
}

func (s *service) Deny(ctx context.Context, input RespondInput) (*models.InventoryRequest, error) {
	return s.respond(ctx, input, enums.RequestStatusDenied)
}

func (s *service) respond(ctx context.Context, input RespondInput, status enums.RequestStatus) (*models.InventoryRequest, error) {
	request, err := s.repo.FindByID(ctx, input.OrganizationID, input.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request has already been responded to").
			WithDetails(map[string]any{"request_id": input.RequestID, "status": request.Status})
	}

	now := time.Now().UTC()
	updated, err := s.repo.Respond(ctx, input.RequestID, status, input.ResponderID, input.Notes, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "respond to request")
	}
	if !updated {
		// Another responder won between the read and the write.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request has already been responded to").
			WithDetails(map[string]any{"request_id": input.RequestID})
	}

	request.Status = status
	request.RespondedBy = &input.ResponderID
	request.RespondedAt = &now
	request.ResponseNotes = input.Notes
	return request, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*Page, error) {
	if input.Filter.OrganizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}

	var cursor *pagination.Cursor
	if input.Pagination.Cursor != "" {
		parsed, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, input.Filter, input.Pagination.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	page := &Page{Requests: rows}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}
