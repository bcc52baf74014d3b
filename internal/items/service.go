package items

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
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// Service manages the item catalog. Quantity is set once at creation; after
// that every change goes through the ledger.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	Update(ctx context.Context, input UpdateItemInput) (*models.InventoryItem, error)
	Get(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, input ListItemsInput) (*Page, error)
	Delete(ctx context.Context, orgID, itemID uuid.UUID, purge bool) error
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	OrganizationID  uuid.UUID
	Name            string
	SKU             *string
	Category        *string
	InitialQuantity int
	CustomFields    json.RawMessage
	CreatedBy       uuid.UUID
}

// UpdateItemInput mutates catalog attributes only; Quantity is deliberately
// absent.
type UpdateItemInput struct {
	OrganizationID uuid.UUID
	ItemID         uuid.UUID
	Name           *string
	SKU            *string
	Category       *string
	CustomFields   json.RawMessage
}

// ListItemsInput filters and pages the catalog listing.
type ListItemsInput struct {
	Filter     ListFilter
	Pagination pagination.Params
}

// Page is one page of items plus the cursor for the next.
type Page struct {
	Items      []models.InventoryItem `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires the items service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if err := s.validateCustomFields(ctx, input.OrganizationID, input.CustomFields); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		SKU:            input.SKU,
		Category:       input.Category,
		Quantity:       input.InitialQuantity,
		CustomFields:   input.CustomFields,
		CreatedBy:      &input.CreatedBy,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, input UpdateItemInput) (*models.InventoryItem, error) {
	item, err := s.Get(ctx, input.OrganizationID, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		item.Name = *input.Name
	}
	if input.SKU != nil {
		item.SKU = input.SKU
	}
	if input.Category != nil {
		item.Category = input.Category
	}
	if input.CustomFields != nil {
		if err := s.validateCustomFields(ctx, input.OrganizationID, input.CustomFields); err != nil {
			return nil, err
		}
		item.CustomFields = input.CustomFields
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, orgID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, orgID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, input ListItemsInput) (*Page, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	page := &Page{Items: rows}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) Delete(ctx context.Context, orgID, itemID uuid.UUID, purge bool) error {
	var (
		deleted bool
		err     error
	)
	if purge {
		deleted, err = s.repo.HardDelete(ctx, orgID, itemID)
	} else {
		deleted, err = s.repo.SoftDelete(ctx, orgID, itemID)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// validateCustomFields checks the payload against the organization's field
// definitions: required fields present, select values among the configured
// options, and no unknown keys.
func (s *service) validateCustomFields(ctx context.Context, orgID uuid.UUID, raw json.RawMessage) error {
	defs, err := s.repo.ListFieldDefinitions(ctx, orgID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load field definitions")
	}

	values := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &values); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "custom_fields must be a JSON object")
		}
	}

	byName := make(map[string]models.FieldDefinition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	for name := range values {
		if _, ok := byName[name]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown custom field %q", name))
		}
	}

	for _, def := range defs {
		value, present := values[def.Name]
		if !present || value == nil {
			if def.IsRequired {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q is required", def.Name))
			}
			continue
		}
		if err := validateFieldValue(def, value); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldValue(def models.FieldDefinition, value any) error {
	switch def.FieldType {
	case enums.FieldTypeNumber:
		if _, ok := value.(float64); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q must be a number", def.Name))
		}
	case enums.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q must be a boolean", def.Name))
		}
	case enums.FieldTypeSelect:
		text, ok := value.(string)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q must be a string", def.Name))
		}
		var options []string
		if len(def.Options) > 0 {
			if err := json.Unmarshal(def.Options, &options); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode field options")
			}
		}
		for _, option := range options {
			if option == text {
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q has no option %q", def.Name, text)).
			WithDetails(map[string]any{"options": options})
	case enums.FieldTypeText, enums.FieldTypeDate:
		if _, ok := value.(string); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom field %q must be a string", def.Name))
		}
	}
	return nil
}
