package assignments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

// Service tracks which users and locations hold an item's stock.
type Service interface {
	CreateAssignment(ctx context.Context, input CreateAssignmentInput) (*models.ItemAssignment, error)
	Revoke(ctx context.Context, assignmentID uuid.UUID) error
	Availability(ctx context.Context, orgID, itemID uuid.UUID) (*AvailabilityReport, error)
	ListForItem(ctx context.Context, orgID, itemID uuid.UUID) ([]models.ItemAssignment, error)
	ActiveLocationAssignment(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error)
	AdjustAssignedQuantity(ctx context.Context, assignmentID uuid.UUID, delta int) error
}

// CreateAssignmentInput targets exactly one of UserID/LocationID. A nil
// Quantity creates an unbounded assignment that reserves nothing specific.
type CreateAssignmentInput struct {
	OrganizationID uuid.UUID
	ItemID         uuid.UUID
	UserID         *uuid.UUID
	LocationID     *uuid.UUID
	AssignedBy     uuid.UUID
	Quantity       *int
	Notes          *string
}

// AvailabilityReport is always recomputed from live assignment rows.
// OverAssigned flags historical over-allocation; it is reported, never
// auto-corrected.
type AvailabilityReport struct {
	ItemID        uuid.UUID `json:"item_id"`
	Quantity      int       `json:"quantity"`
	TotalAssigned int       `json:"total_assigned"`
	Available     int       `json:"available"`
	OverAssigned  bool      `json:"over_assigned"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the assignments service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CreateAssignment(ctx context.Context, input CreateAssignmentInput) (*models.ItemAssignment, error) {
	if (input.UserID == nil) == (input.LocationID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment requires exactly one of user or location")
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive whole number").
			WithDetails(map[string]any{"requested": *input.Quantity})
	}

	report, err := s.Availability(ctx, input.OrganizationID, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if *input.Quantity > report.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity exceeds available stock").
				WithDetails(map[string]any{
					"item_id":   input.ItemID,
					"requested": *input.Quantity,
					"available": report.Available,
				})
		}
	} else if report.Available <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no stock available to assign").
			WithDetails(map[string]any{"item_id": input.ItemID, "available": report.Available})
	}

	assignment := &models.ItemAssignment{
		ItemID:           input.ItemID,
		UserID:           input.UserID,
		LocationID:       input.LocationID,
		AssignedBy:       input.AssignedBy,
		QuantityAssigned: input.Quantity,
		Notes:            input.Notes,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}
	return assignment, nil
}

// Revoke is idempotent: revoking an already revoked assignment succeeds
// without touching the row.
func (s *service) Revoke(ctx context.Context, assignmentID uuid.UUID) error {
	if assignmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	updated, err := s.repo.Revoke(ctx, assignmentID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke assignment")
	}
	if updated {
		return nil
	}

	// Distinguish "already revoked" from "never existed".
	if _, err := s.repo.FindByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	return nil
}

func (s *service) Availability(ctx context.Context, orgID, itemID uuid.UUID) (*AvailabilityReport, error) {
	item, err := s.repo.GetItem(ctx, orgID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	active, err := s.repo.ListActiveByItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active assignments")
	}

	totalAssigned := 0
	for _, assignment := range active {
		if assignment.QuantityAssigned != nil {
			totalAssigned += *assignment.QuantityAssigned
		}
	}

	available := item.Quantity - totalAssigned
	if available < 0 {
		available = 0
	}

	report := &AvailabilityReport{
		ItemID:        itemID,
		Quantity:      item.Quantity,
		TotalAssigned: totalAssigned,
		Available:     available,
		OverAssigned:  totalAssigned > item.Quantity,
	}
	if report.OverAssigned {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"item_id":        itemID.String(),
			"quantity":       item.Quantity,
			"total_assigned": totalAssigned,
		}), "item is over-assigned")
	}
	return report, nil
}

func (s *service) ListForItem(ctx context.Context, orgID, itemID uuid.UUID) ([]models.ItemAssignment, error) {
	if _, err := s.repo.GetItem(ctx, orgID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	rows, err := s.repo.ListActiveByItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return rows, nil
}

func (s *service) ActiveLocationAssignment(ctx context.Context, itemID, locationID uuid.UUID) (*models.ItemAssignment, error) {
	return s.repo.ActiveByItemAndLocation(ctx, itemID, locationID)
}

func (s *service) AdjustAssignedQuantity(ctx context.Context, assignmentID uuid.UUID, delta int) error {
	if assignmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if delta == 0 {
		return nil
	}

	updated, err := s.repo.AdjustQuantity(ctx, assignmentID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust assigned quantity")
	}
	if !updated {
		// Revoked or untracked assignments are fine to skip; the caller
		// treats the delta as applied.
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"assignment_id": assignmentID.String(),
			"delta":         delta,
		}), "assignment quantity adjustment skipped")
	}
	return nil
}
