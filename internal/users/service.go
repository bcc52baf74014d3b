package users

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
)

// Service exposes organization member management. Role changes are gated to
// admins at the route layer.
type Service interface {
	Get(ctx context.Context, orgID, userID uuid.UUID) (*models.UserProfile, error)
	List(ctx context.Context, orgID uuid.UUID) ([]models.UserProfile, error)
	UpdateRole(ctx context.Context, input UpdateRoleInput) (*models.UserProfile, error)
	TouchLastActive(ctx context.Context, userID uuid.UUID) error
}

// UpdateRoleInput changes a member's role.
type UpdateRoleInput struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	ActorID        uuid.UUID
	Role           enums.UserRole
}

type service struct {
	repo Repository
}

// NewService wires the users service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, orgID, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return profile, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.UserProfile, error) {
	rows, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, nil
}

func (s *service) UpdateRole(ctx context.Context, input UpdateRoleInput) (*models.UserProfile, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if input.ActorID == input.UserID {
		// An admin demoting themselves would lock the org out of admin
		// actions with no way back.
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot change your own role")
	}

	updated, err := s.repo.UpdateRole(ctx, input.OrganizationID, input.UserID, input.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.Get(ctx, input.OrganizationID, input.UserID)
}

func (s *service) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.TouchLastActive(ctx, userID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch last active")
	}
	return nil
}
