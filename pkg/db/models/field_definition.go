package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// FieldDefinition describes an organization-defined custom field rendered on
// every item. Options holds the choices for select fields.
type FieldDefinition struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	Name           string          `gorm:"column:name;not null"`
	Label          string          `gorm:"column:label;not null"`
	FieldType      enums.FieldType `gorm:"column:field_type;type:field_type;not null;default:text"`
	Options        json.RawMessage `gorm:"column:options;type:jsonb"`
	IsRequired     bool            `gorm:"column:is_required;not null;default:false"`
	IsCore         bool            `gorm:"column:is_core;not null;default:false"`
	DisplayOrder   int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
