package sharepoint

import (
	"fmt"
	"time"
)

// FieldType classifies a list column. The values mirror SharePoint's
// TypeAsString field property.
type FieldType string

const (
	FieldTypeText     FieldType = "Text"
	FieldTypeNote     FieldType = "Note"
	FieldTypeNumber   FieldType = "Number"
	FieldTypeInteger  FieldType = "Integer"
	FieldTypeBoolean  FieldType = "Boolean"
	FieldTypeDateTime FieldType = "DateTime"
	FieldTypeChoice   FieldType = "Choice"
	FieldTypeLookup   FieldType = "Lookup"
	FieldTypeUser     FieldType = "User"
	FieldTypeURL      FieldType = "URL"
	FieldTypeCurrency FieldType = "Currency"
	FieldTypeCounter  FieldType = "Counter"
)

// FieldDef describes one column of a list schema.
type FieldDef struct {
	InternalName string    `json:"InternalName"`
	Title        string    `json:"Title"`
	Type         FieldType `json:"TypeAsString"`
	Required     bool      `json:"Required"`
	ReadOnly     bool      `json:"ReadOnlyField"`
	Hidden       bool      `json:"Hidden"`
}

// FieldValues is the set of column values sent with an item create or
// update, keyed by internal field name.
type FieldValues map[string]any

// Validate checks the values against a list schema. Unknown fields, values
// of the wrong type, writes to read-only columns, and (for create requests)
// missing required columns are rejected before any remote call is made.
func (v FieldValues) Validate(schema []FieldDef, forCreate bool) error {
	byName := make(map[string]FieldDef, len(schema))
	for _, def := range schema {
		byName[def.InternalName] = def
	}

	for name, value := range v {
		def, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrFieldNotInSchema, name)
		}

		if def.ReadOnly {
			return fmt.Errorf("%w: %q", ErrReadOnlyField, name)
		}

		err := checkFieldValue(def, value)
		if err != nil {
			return err
		}
	}

	if forCreate {
		for _, def := range schema {
			if !def.Required || def.ReadOnly || def.Hidden {
				continue
			}

			if _, ok := v[def.InternalName]; !ok {
				return fmt.Errorf("%w: %q", ErrRequiredFieldMissing, def.InternalName)
			}
		}
	}

	return nil
}

func checkFieldValue(def FieldDef, value any) error {
	if value == nil {
		return nil
	}

	switch def.Type {
	case FieldTypeText, FieldTypeNote, FieldTypeChoice, FieldTypeURL:
		if _, ok := value.(string); !ok {
			return typeMismatch(def, value)
		}

	case FieldTypeNumber, FieldTypeCurrency:
		switch value.(type) {
		case float64, float32, int, int32, int64:
		default:
			return typeMismatch(def, value)
		}

	case FieldTypeInteger, FieldTypeLookup, FieldTypeUser, FieldTypeCounter:
		switch value.(type) {
		case int, int32, int64, float64:
		default:
			return typeMismatch(def, value)
		}

	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeMismatch(def, value)
		}

	case FieldTypeDateTime:
		switch value.(type) {
		case time.Time, string:
		default:
			return typeMismatch(def, value)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFieldType, def.Type)
	}

	return nil
}

func typeMismatch(def FieldDef, value any) error {
	return fmt.Errorf("%w: field %q expects %s, got %T", ErrFieldTypeMismatch, def.InternalName, def.Type, value)
}
