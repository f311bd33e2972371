package sharepoint

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ProvisionClient applies declarative list definitions against a site.
type ProvisionClient interface {
	// ApplyDefinition ensures the lists described by the YAML definition
	// exist with the declared fields.
	ApplyDefinition(ctx context.Context, definition []byte) (*ProvisionResult, error)

	// DiffDefinition reports which lists and fields the definition would
	// create without applying anything.
	DiffDefinition(ctx context.Context, definition []byte) (*ProvisionDiff, error)
}

// SiteDefinition is a declarative description of the lists a site should
// carry.
type SiteDefinition struct {
	Lists []ListDefinition `yaml:"lists" json:"lists"`
}

// ListDefinition describes one list and its custom fields.
type ListDefinition struct {
	Title       string            `yaml:"title"                 json:"title"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []FieldDefinition `yaml:"fields,omitempty"      json:"fields,omitempty"`
}

// FieldDefinition describes one custom field of a list.
type FieldDefinition struct {
	Name     string    `yaml:"name"               json:"name"`
	Type     FieldType `yaml:"type"               json:"type"`
	Required bool      `yaml:"required,omitempty" json:"required,omitempty"`
}

// ParseSiteDefinition decodes and validates a YAML site definition.
func ParseSiteDefinition(data []byte) (*SiteDefinition, error) {
	var definition SiteDefinition

	err := yaml.Unmarshal(data, &definition)
	if err != nil {
		return nil, fmt.Errorf("parsing site definition: %w", err)
	}

	for _, list := range definition.Lists {
		if list.Title == "" {
			return nil, ErrProvisionTitleRequired
		}

		for _, field := range list.Fields {
			if !validFieldType(field.Type) {
				return nil, fmt.Errorf("%w: %q in list %q", ErrUnknownFieldType, field.Type, list.Title)
			}
		}
	}

	return &definition, nil
}

func validFieldType(fieldType FieldType) bool {
	switch fieldType {
	case FieldTypeText, FieldTypeNote, FieldTypeNumber, FieldTypeInteger,
		FieldTypeBoolean, FieldTypeDateTime, FieldTypeChoice, FieldTypeLookup,
		FieldTypeUser, FieldTypeURL, FieldTypeCurrency, FieldTypeCounter:
		return true
	default:
		return false
	}
}

// ProvisionResult reports what ApplyDefinition changed.
type ProvisionResult struct {
	CreatedLists  []string `yaml:"created_lists"  json:"created_lists"`
	CreatedFields []string `yaml:"created_fields" json:"created_fields"`
	Unchanged     []string `yaml:"unchanged"      json:"unchanged"`
}

// ProvisionDiff reports what ApplyDefinition would change.
type ProvisionDiff struct {
	MissingLists  []string `yaml:"missing_lists"  json:"missing_lists"`
	MissingFields []string `yaml:"missing_fields" json:"missing_fields"`
}
