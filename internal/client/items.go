package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// fieldSchemaSource yields the writable schema of a list, used for optional
// client-side payload validation.
type fieldSchemaSource interface {
	Fields(ctx context.Context, listName string) ([]sharepoint.FieldDef, error)
}

// ItemsClient implements sharepoint.ItemsClient.
type ItemsClient struct {
	httpClient *http.Client

	// schemaSource enables payload validation against the list schema
	// before any remote call. Nil disables validation.
	schemaSource fieldSchemaSource
}

// NewItemsClient creates a new items client.
func NewItemsClient(httpClient *http.Client) *ItemsClient {
	return &ItemsClient{
		httpClient: httpClient,
	}
}

// List implements sharepoint.ItemsClient.List.
func (c *ItemsClient) List(ctx context.Context, listName string, params *sharepoint.QueryParams) (*sharepoint.ListResponse[sharepoint.Item], error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	return c.ListWithPath(ctx, listPath(listName)+"/items", params)
}

// ListWithPath implements sharepoint.ItemsClient.ListWithPath.
func (c *ItemsClient) ListWithPath(ctx context.Context, path string, params *sharepoint.QueryParams) (*sharepoint.ListResponse[sharepoint.Item], error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.Item]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing items response: %w", err)
	}

	return &list, nil
}

// GetAll implements sharepoint.ItemsClient.GetAll. Server continuations are
// followed until the collection is exhausted.
func (c *ItemsClient) GetAll(ctx context.Context, listName string, params *sharepoint.QueryParams) ([]sharepoint.Item, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	items, err := sharepoint.FetchAllPages[sharepoint.Item](ctx, c, listPath(listName)+"/items", params, nil)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Get implements sharepoint.ItemsClient.Get.
func (c *ItemsClient) Get(ctx context.Context, listName string, itemID int) (*sharepoint.Item, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	resp, err := c.httpClient.Get(ctx, itemPath(listName, itemID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	var item sharepoint.Item

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}

	return &item, nil
}

// Create implements sharepoint.ItemsClient.Create.
func (c *ItemsClient) Create(ctx context.Context, listName string, fields sharepoint.FieldValues) (*sharepoint.Item, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	err := c.validate(ctx, listName, fields, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, listPath(listName)+"/items", fields)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	var item sharepoint.Item

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing item response: %w", err)
	}

	return &item, nil
}

// Update implements sharepoint.ItemsClient.Update. SharePoint updates go
// through POST with a MERGE method override and an unconditional ETag; the
// 204 response carries no body, so the item is re-fetched.
func (c *ItemsClient) Update(ctx context.Context, listName string, itemID int, fields sharepoint.FieldValues) (*sharepoint.Item, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	err := c.validate(ctx, listName, fields, false)
	if err != nil {
		return nil, err
	}

	req := &http.Request{
		Method: "POST",
		Path:   itemPath(listName, itemID),
		Body:   fields,
		Headers: map[string]string{
			"X-HTTP-Method": "MERGE",
			"If-Match":      "*",
		},
	}

	_, err = c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return c.Get(ctx, listName, itemID)
}

// Delete implements sharepoint.ItemsClient.Delete.
func (c *ItemsClient) Delete(ctx context.Context, listName string, itemID int) error {
	if listName == "" {
		return sharepoint.ErrListNameRequired
	}

	_, err := c.httpClient.Delete(ctx, itemPath(listName, itemID))
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return nil
}

func (c *ItemsClient) validate(ctx context.Context, listName string, fields sharepoint.FieldValues, forCreate bool) error {
	if c.schemaSource == nil || len(fields) == 0 {
		return nil
	}

	schema, err := c.schemaSource.Fields(ctx, listName)
	if err != nil {
		return fmt.Errorf("loading list schema: %w", err)
	}

	return fields.Validate(schema, forCreate)
}
