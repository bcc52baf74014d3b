package enums

import "fmt"

// FieldType maps to the field_type enum in Postgres and describes the shape
// of an organization-defined custom item field.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeSelect  FieldType = "select"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
)

var validFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeSelect,
	FieldTypeBoolean,
	FieldTypeDate,
}

// IsValid reports whether the value matches the canonical field type enum.
func (t FieldType) IsValid() bool {
	for _, candidate := range validFieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func (t FieldType) String() string {
	return string(t)
}

// ParseFieldType converts raw input into FieldType.
func ParseFieldType(value string) (FieldType, error) {
	for _, candidate := range validFieldTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid field type %q", value)
}
