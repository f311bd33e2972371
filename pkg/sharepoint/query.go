package sharepoint

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents OData query options for list-style requests.
type QueryParams struct {
	// Filter is an OData $filter expression evaluated server-side.
	Filter string
	// Select restricts the returned fields.
	Select []string
	// Expand expands lookup fields.
	Expand []string
	// OrderBy is the $orderby expression, e.g. "Created desc".
	OrderBy string
	// Top is the page size hint ($top).
	Top int
	// SkipToken carries the server continuation for the next page.
	SkipToken string
}

// NewQueryParams creates a new empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithFilter sets the $filter expression.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithSelect appends fields to $select.
func (q *QueryParams) WithSelect(fields ...string) *QueryParams {
	q.Select = append(q.Select, fields...)

	return q
}

// WithExpand appends fields to $expand.
func (q *QueryParams) WithExpand(fields ...string) *QueryParams {
	q.Expand = append(q.Expand, fields...)

	return q
}

// WithOrderBy sets the $orderby expression.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithTop sets the page size hint.
func (q *QueryParams) WithTop(top int) *QueryParams {
	q.Top = top

	return q
}

// WithSkipToken sets the server continuation token.
func (q *QueryParams) WithSkipToken(token string) *QueryParams {
	q.SkipToken = token

	return q
}

// ToValues converts the params to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Filter != "" {
		values.Set("$filter", q.Filter)
	}

	if len(q.Select) > 0 {
		values.Set("$select", strings.Join(q.Select, ","))
	}

	if len(q.Expand) > 0 {
		values.Set("$expand", strings.Join(q.Expand, ","))
	}

	if q.OrderBy != "" {
		values.Set("$orderby", q.OrderBy)
	}

	if q.Top > 0 {
		values.Set("$top", strconv.Itoa(q.Top))
	}

	if q.SkipToken != "" {
		values.Set("$skiptoken", q.SkipToken)
	}

	return values
}
