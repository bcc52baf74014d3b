package locations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
)

// Service manages locations and who manages them.
type Service interface {
	Create(ctx context.Context, input CreateLocationInput) (*models.Location, error)
	Update(ctx context.Context, input UpdateLocationInput) (*models.Location, error)
	Get(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error)
	List(ctx context.Context, orgID uuid.UUID) ([]models.Location, error)
	GrantManager(ctx context.Context, input GrantManagerInput) (*models.LocationManager, error)
	RevokeManager(ctx context.Context, grantID uuid.UUID) error
	ListManagers(ctx context.Context, orgID, locationID uuid.UUID) ([]models.LocationManager, error)
}

// CreateLocationInput holds the payload to create a location.
type CreateLocationInput struct {
	OrganizationID uuid.UUID
	Name           string
	Address        *string
	Latitude       *float64
	Longitude      *float64
}

// UpdateLocationInput mutates optional location attributes.
type UpdateLocationInput struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	Name           *string
	Address        *string
	Latitude       *float64
	Longitude      *float64
}

// GrantManagerInput makes a user a manager of a location.
type GrantManagerInput struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	UserID         uuid.UUID
	AssignedBy     uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires the locations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateLocationInput) (*models.Location, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	location := &models.Location{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Address:        input.Address,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return location, nil
}

func (s *service) Update(ctx context.Context, input UpdateLocationInput) (*models.Location, error) {
	location, err := s.Get(ctx, input.OrganizationID, input.LocationID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		location.Name = *input.Name
	}
	if input.Address != nil {
		location.Address = input.Address
	}
	if input.Latitude != nil {
		location.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		location.Longitude = input.Longitude
	}

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
	}
	return location, nil
}

func (s *service) Get(ctx context.Context, orgID, locationID uuid.UUID) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, orgID, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.Location, error) {
	rows, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return rows, nil
}

// GrantManager is idempotent per active grant: granting to a user who is
// already an active manager returns the existing grant.
func (s *service) GrantManager(ctx context.Context, input GrantManagerInput) (*models.LocationManager, error) {
	if _, err := s.Get(ctx, input.OrganizationID, input.LocationID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ActiveGrant(ctx, input.LocationID, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing grant")
	}
	if existing != nil {
		return existing, nil
	}

	grant := &models.LocationManager{
		LocationID: input.LocationID,
		UserID:     input.UserID,
		AssignedBy: input.AssignedBy,
	}
	if err := s.repo.CreateGrant(ctx, grant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grant")
	}
	return grant, nil
}

// RevokeManager is idempotent: revoking an already revoked grant succeeds.
func (s *service) RevokeManager(ctx context.Context, grantID uuid.UUID) error {
	updated, err := s.repo.RevokeGrant(ctx, grantID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke grant")
	}
	if updated {
		return nil
	}

	if _, err := s.repo.FindGrant(ctx, grantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "manager grant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load grant")
	}
	return nil
}

func (s *service) ListManagers(ctx context.Context, orgID, locationID uuid.UUID) ([]models.LocationManager, error) {
	if _, err := s.Get(ctx, orgID, locationID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListActiveGrants(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list manager grants")
	}
	return rows, nil
}
