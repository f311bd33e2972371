package sharepoint_test

import (
	"testing"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskItems() []sharepoint.Item {
	return []sharepoint.Item{
		{ID: 1, Title: "Ship release", Fields: sharepoint.FieldValues{
			"Title": "Ship release", "Status": "Open", "Priority": float64(3),
		}},
		{ID: 2, Title: "Write docs", Fields: sharepoint.FieldValues{
			"Title": "Write docs", "Status": "Closed", "Priority": float64(1),
		}},
		{ID: 3, Title: "Fix flaky test", Fields: sharepoint.FieldValues{
			"Title": "Fix flaky test", "Status": "Open", "Priority": float64(1),
		}},
	}
}

func TestCompileFilter(t *testing.T) {
	filter, err := sharepoint.CompileFilter(`Status == "Open"`)
	require.NoError(t, err)
	assert.Equal(t, `Status == "Open"`, filter.Expression())

	kept := filter.FilterItems(taskItems())
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].ID)
	assert.Equal(t, 3, kept[1].ID)
}

func TestCompileFilter_Empty(t *testing.T) {
	_, err := sharepoint.CompileFilter("   ")
	require.ErrorIs(t, err, sharepoint.ErrEmptyFilterExpression)
}

func TestCompileFilter_Invalid(t *testing.T) {
	_, err := sharepoint.CompileFilter(`Status ==`)
	require.Error(t, err)
}

func TestItemFilter_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantIDs    []int
	}{
		{
			name:       "numeric comparison",
			expression: `Priority > 2`,
			wantIDs:    []int{1},
		},
		{
			name:       "conjunction",
			expression: `Status == "Open" && Priority == 1`,
			wantIDs:    []int{3},
		},
		{
			name:       "contains helper is case-insensitive",
			expression: `contains(Title, "FLAKY")`,
			wantIDs:    []int{3},
		},
		{
			name:       "startsWith helper",
			expression: `startsWith(Title, "ship")`,
			wantIDs:    []int{1},
		},
		{
			name:       "missing field matches nothing",
			expression: `Nonexistent == "x"`,
			wantIDs:    nil,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			filter, err := sharepoint.CompileFilter(testCase.expression)
			require.NoError(t, err)

			var ids []int
			for _, item := range filter.FilterItems(taskItems()) {
				ids = append(ids, item.ID)
			}

			assert.Equal(t, testCase.wantIDs, ids)
		})
	}
}

func TestMatchItems(t *testing.T) {
	items := taskItems()

	kept := sharepoint.MatchItems(items, []sharepoint.FieldMatch{
		{Column: "Status", Value: "Open"},
	})
	require.Len(t, kept, 2)

	// Numeric fields compare against their integer rendering.
	kept = sharepoint.MatchItems(items, []sharepoint.FieldMatch{
		{Column: "Priority", Value: "3"},
	})
	require.Len(t, kept, 1)
	assert.Equal(t, 1, kept[0].ID)

	// No matches means every item is kept.
	assert.Len(t, sharepoint.MatchItems(items, nil), 3)

	// Missing column matches nothing.
	assert.Empty(t, sharepoint.MatchItems(items, []sharepoint.FieldMatch{
		{Column: "Nonexistent", Value: "x"},
	}))
}
