package sharepoint

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FieldMatch is an exact column/value pair. An item matches when the
// stringified value of the column equals Value.
type FieldMatch struct {
	Column string
	Value  string
}

// MatchItems keeps the items whose columns satisfy every given match.
func MatchItems(items []Item, matches []FieldMatch) []Item {
	if len(matches) == 0 {
		return items
	}

	var kept []Item

	for _, item := range items {
		if itemMatches(item, matches) {
			kept = append(kept, item)
		}
	}

	return kept
}

func itemMatches(item Item, matches []FieldMatch) bool {
	for _, match := range matches {
		value, ok := item.Fields[match.Column]
		if !ok {
			return false
		}

		if stringify(value) != match.Value {
			return false
		}
	}

	return true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// Item fields decoded from JSON carry numbers as float64; render
		// integral values without the trailing ".0" so "42" matches 42.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ItemFilter is a compiled client-side filter over item fields.
type ItemFilter struct {
	expression string
	program    *vm.Program
}

// CompileFilter compiles a filter expression. Field values are exposed as
// top-level variables by internal name, alongside a small set of helper
// functions (contains, startsWith, endsWith, lower, upper).
func CompileFilter(expression string) (*ItemFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyFilterExpression
	}

	program, err := expr.Compile(expression,
		expr.Env(filterEnv(nil)),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling filter expression: %w", err)
	}

	return &ItemFilter{
		expression: expression,
		program:    program,
	}, nil
}

// Expression returns the source expression.
func (f *ItemFilter) Expression() string {
	return f.expression
}

// Evaluate reports whether the item satisfies the filter. Runtime
// evaluation errors count as no match.
func (f *ItemFilter) Evaluate(item Item) bool {
	result, err := expr.Run(f.program, filterEnv(item.Fields))
	if err != nil {
		return false
	}

	matched, ok := result.(bool)

	return ok && matched
}

// FilterItems keeps the items satisfying the compiled filter.
func (f *ItemFilter) FilterItems(items []Item) []Item {
	var kept []Item

	for _, item := range items {
		if f.Evaluate(item) {
			kept = append(kept, item)
		}
	}

	return kept
}

func filterEnv(fields FieldValues) map[string]any {
	env := map[string]any{
		"contains": func(s, substr string) bool {
			return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
		},
		"startsWith": func(s, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
		},
		"endsWith": func(s, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}

	for name, value := range fields {
		env[name] = value
	}

	return env
}
