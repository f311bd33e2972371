package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// ListsClient implements sharepoint.ListsClient. List and field metadata is
// served from the cache manager when one is configured; mutations invalidate
// the affected keys.
type ListsClient struct {
	httpClient   *http.Client
	cacheManager *sharepoint.CacheManager
}

// NewListsClient creates a new lists client. cacheManager may be nil.
func NewListsClient(httpClient *http.Client, cacheManager *sharepoint.CacheManager) *ListsClient {
	return &ListsClient{
		httpClient:   httpClient,
		cacheManager: cacheManager,
	}
}

// Get implements sharepoint.ListsClient.Get.
func (c *ListsClient) Get(ctx context.Context, listName string) (*sharepoint.List, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	path := listPath(listName)

	body, err := c.cachedGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("getting list: %w", err)
	}

	var list sharepoint.List

	err = json.Unmarshal(body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing list: %w", err)
	}

	return &list, nil
}

// List implements sharepoint.ListsClient.List.
func (c *ListsClient) List(ctx context.Context, params *sharepoint.QueryParams) (*sharepoint.ListResponse[sharepoint.List], error) {
	path := "/_api/web/lists"

	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.List]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing lists response: %w", err)
	}

	return &list, nil
}

// Create implements sharepoint.ListsClient.Create.
func (c *ListsClient) Create(ctx context.Context, request *sharepoint.ListCreateRequest) (*sharepoint.List, error) {
	if request == nil || request.Title == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	payload := *request
	if payload.BaseTemplate == 0 {
		payload.BaseTemplate = sharepoint.ListTemplateGeneric
		payload.AllowContentTypes = true
	}

	resp, err := c.httpClient.Post(ctx, "/_api/web/lists", payload)
	if err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}

	c.invalidate(ctx, listPath(payload.Title))

	var list sharepoint.List

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &list, nil
}

// Delete implements sharepoint.ListsClient.Delete.
func (c *ListsClient) Delete(ctx context.Context, listName string) error {
	if listName == "" {
		return sharepoint.ErrListNameRequired
	}

	path := listPath(listName)

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}

	c.invalidate(ctx, path)
	c.invalidate(ctx, path+"/fields")

	return nil
}

// Fields implements sharepoint.ListsClient.Fields.
func (c *ListsClient) Fields(ctx context.Context, listName string) ([]sharepoint.FieldDef, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	path := listPath(listName) + "/fields"

	body, err := c.cachedGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("getting list fields: %w", err)
	}

	var fields sharepoint.ListResponse[sharepoint.FieldDef]

	err = json.Unmarshal(body, &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing list fields: %w", err)
	}

	defs := make([]sharepoint.FieldDef, 0, len(fields.Value))

	for _, def := range fields.Value {
		if def.Hidden {
			continue
		}

		defs = append(defs, def)
	}

	return defs, nil
}

// CreateField adds a field to a list. Used by the provisioning client.
func (c *ListsClient) CreateField(ctx context.Context, listName string, field *sharepoint.FieldDefinition) error {
	path := listPath(listName) + "/fields"

	payload := map[string]interface{}{
		"Title":         field.Name,
		"FieldTypeKind": fieldTypeKind(field.Type),
		"Required":      field.Required,
	}

	_, err := c.httpClient.Post(ctx, path, payload)
	if err != nil {
		return fmt.Errorf("creating field: %w", err)
	}

	c.invalidate(ctx, path)

	return nil
}

// fieldTypeKind maps field type names to SharePoint's numeric FieldTypeKind.
func fieldTypeKind(fieldType sharepoint.FieldType) int {
	switch fieldType {
	case sharepoint.FieldTypeInteger:
		return 1
	case sharepoint.FieldTypeText:
		return 2
	case sharepoint.FieldTypeNote:
		return 3
	case sharepoint.FieldTypeDateTime:
		return 4
	case sharepoint.FieldTypeChoice:
		return 6
	case sharepoint.FieldTypeLookup:
		return 7
	case sharepoint.FieldTypeBoolean:
		return 8
	case sharepoint.FieldTypeNumber:
		return 9
	case sharepoint.FieldTypeCurrency:
		return 10
	case sharepoint.FieldTypeURL:
		return 11
	case sharepoint.FieldTypeCounter:
		return 5
	case sharepoint.FieldTypeUser:
		return 20
	default:
		return 2
	}
}

// cachedGet fetches a GET response through the cache manager when present.
func (c *ListsClient) cachedGet(ctx context.Context, path string) ([]byte, error) {
	if c.cacheManager == nil {
		resp, err := c.httpClient.Get(ctx, path, nil)
		if err != nil {
			return nil, err
		}

		return resp.Body, nil
	}

	key := c.cacheManager.GetCacheKey("GET", path, nil)

	if data, err := c.cacheManager.Get(ctx, key); err == nil {
		return data, nil
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	_ = c.cacheManager.Set(ctx, key, resp.Body, 0)

	return resp.Body, nil
}

func (c *ListsClient) invalidate(ctx context.Context, path string) {
	if c.cacheManager == nil {
		return
	}

	_ = c.cacheManager.Invalidate(ctx, c.cacheManager.GetCacheKey("GET", path, nil))
}
