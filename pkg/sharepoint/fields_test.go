package sharepoint_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskSchema() []sharepoint.FieldDef {
	return []sharepoint.FieldDef{
		{InternalName: "Title", Type: sharepoint.FieldTypeText, Required: true},
		{InternalName: "Body", Type: sharepoint.FieldTypeNote},
		{InternalName: "Priority", Type: sharepoint.FieldTypeInteger},
		{InternalName: "Effort", Type: sharepoint.FieldTypeNumber},
		{InternalName: "Done", Type: sharepoint.FieldTypeBoolean},
		{InternalName: "DueDate", Type: sharepoint.FieldTypeDateTime},
		{InternalName: "AssignedToId", Type: sharepoint.FieldTypeUser},
		{InternalName: "Created", Type: sharepoint.FieldTypeDateTime, ReadOnly: true},
	}
}

func TestFieldValues_Validate(t *testing.T) {
	schema := taskSchema()

	tests := []struct {
		name      string
		values    sharepoint.FieldValues
		forCreate bool
		wantErr   error
	}{
		{
			name: "valid create",
			values: sharepoint.FieldValues{
				"Title":    "Ship release",
				"Priority": 3,
				"Done":     false,
			},
			forCreate: true,
		},
		{
			name: "valid update without required field",
			values: sharepoint.FieldValues{
				"Priority": 1,
			},
			forCreate: false,
		},
		{
			name: "unknown field",
			values: sharepoint.FieldValues{
				"Title": "x",
				"Bogus": "value",
			},
			forCreate: true,
			wantErr:   sharepoint.ErrFieldNotInSchema,
		},
		{
			name: "type mismatch",
			values: sharepoint.FieldValues{
				"Title":    "x",
				"Priority": "high",
			},
			forCreate: true,
			wantErr:   sharepoint.ErrFieldTypeMismatch,
		},
		{
			name: "read-only field rejected",
			values: sharepoint.FieldValues{
				"Created": "2026-01-01T00:00:00Z",
			},
			forCreate: false,
			wantErr:   sharepoint.ErrReadOnlyField,
		},
		{
			name: "required field missing on create",
			values: sharepoint.FieldValues{
				"Priority": 2,
			},
			forCreate: true,
			wantErr:   sharepoint.ErrRequiredFieldMissing,
		},
		{
			name: "boolean mismatch",
			values: sharepoint.FieldValues{
				"Title": "x",
				"Done":  "yes",
			},
			forCreate: true,
			wantErr:   sharepoint.ErrFieldTypeMismatch,
		},
		{
			name: "datetime accepts time.Time",
			values: sharepoint.FieldValues{
				"Title":   "x",
				"DueDate": time.Now(),
			},
			forCreate: true,
		},
		{
			name: "datetime accepts ISO string",
			values: sharepoint.FieldValues{
				"Title":   "x",
				"DueDate": "2026-09-01T00:00:00Z",
			},
			forCreate: true,
		},
		{
			name: "user field takes numeric id",
			values: sharepoint.FieldValues{
				"Title":        "x",
				"AssignedToId": 12,
			},
			forCreate: true,
		},
		{
			name: "number accepts float",
			values: sharepoint.FieldValues{
				"Title":  "x",
				"Effort": 2.5,
			},
			forCreate: true,
		},
		{
			name: "nil value allowed",
			values: sharepoint.FieldValues{
				"Title": "x",
				"Body":  nil,
			},
			forCreate: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.values.Validate(schema, testCase.forCreate)

			if testCase.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, testCase.wantErr)
			assert.True(t, sharepoint.IsValidation(err))
		})
	}
}

func TestFieldValues_ValidateUnknownType(t *testing.T) {
	schema := []sharepoint.FieldDef{
		{InternalName: "Odd", Type: sharepoint.FieldType("Geolocation")},
	}

	err := sharepoint.FieldValues{"Odd": "x"}.Validate(schema, false)
	require.ErrorIs(t, err, sharepoint.ErrUnknownFieldType)
}
