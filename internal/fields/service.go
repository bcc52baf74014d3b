package fields

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
)

// Service manages an organization's custom item fields. Admin gating happens
// at the route layer.
type Service interface {
	Create(ctx context.Context, input CreateFieldInput) (*models.FieldDefinition, error)
	Update(ctx context.Context, input UpdateFieldInput) (*models.FieldDefinition, error)
	List(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error)
	Delete(ctx context.Context, orgID, fieldID uuid.UUID) error
}

// CreateFieldInput holds the payload to define a custom field.
type CreateFieldInput struct {
	OrganizationID uuid.UUID
	Name           string
	Label          string
	FieldType      enums.FieldType
	Options        json.RawMessage
	IsRequired     bool
	DisplayOrder   int
}

// UpdateFieldInput mutates a definition. Name and type are immutable once
// items carry values for them.
type UpdateFieldInput struct {
	OrganizationID uuid.UUID
	FieldID        uuid.UUID
	Label          *string
	Options        json.RawMessage
	IsRequired     *bool
	DisplayOrder   *int
}

type service struct {
	repo Repository
}

// NewService wires the fields service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fields repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateFieldInput) (*models.FieldDefinition, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Label == "" {
		input.Label = input.Name
	}
	if !input.FieldType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid field type %q", input.FieldType))
	}
	if err := validateOptions(input.FieldType, input.Options); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByName(ctx, input.OrganizationID, input.Name); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("field %q already exists", input.Name))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check field name")
	}

	def := &models.FieldDefinition{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Label:          input.Label,
		FieldType:      input.FieldType,
		Options:        input.Options,
		IsRequired:     input.IsRequired,
		DisplayOrder:   input.DisplayOrder,
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create field definition")
	}
	return def, nil
}

func (s *service) Update(ctx context.Context, input UpdateFieldInput) (*models.FieldDefinition, error) {
	def, err := s.repo.FindByID(ctx, input.OrganizationID, input.FieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "field definition not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load field definition")
	}

	if input.Label != nil {
		if *input.Label == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "label cannot be empty")
		}
		def.Label = *input.Label
	}
	if input.Options != nil {
		if err := validateOptions(def.FieldType, input.Options); err != nil {
			return nil, err
		}
		def.Options = input.Options
	}
	if input.IsRequired != nil {
		def.IsRequired = *input.IsRequired
	}
	if input.DisplayOrder != nil {
		def.DisplayOrder = *input.DisplayOrder
	}

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update field definition")
	}
	return def, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.FieldDefinition, error) {
	rows, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list field definitions")
	}
	return rows, nil
}

func (s *service) Delete(ctx context.Context, orgID, fieldID uuid.UUID) error {
	def, err := s.repo.FindByID(ctx, orgID, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "field definition not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load field definition")
	}
	if def.IsCore {
		return pkgerrors.New(pkgerrors.CodeValidation, "core fields cannot be deleted")
	}

	deleted, err := s.repo.Delete(ctx, orgID, fieldID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete field definition")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "field definition not found")
	}
	return nil
}

// validateOptions requires select fields to carry at least one option and
// forbids options elsewhere.
func validateOptions(fieldType enums.FieldType, raw json.RawMessage) error {
	if fieldType != enums.FieldTypeSelect {
		if len(raw) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "options are only valid for select fields")
		}
		return nil
	}

	var options []string
	if len(raw) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "select fields require options")
	}
	if err := json.Unmarshal(raw, &options); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "options must be a JSON array of strings")
	}
	if len(options) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "select fields require at least one option")
	}
	return nil
}
