package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// ProvisionClient implements sharepoint.ProvisionClient on top of the lists
// client.
type ProvisionClient struct {
	lists *ListsClient
}

// NewProvisionClient creates a new provisioning client.
func NewProvisionClient(lists *ListsClient) *ProvisionClient {
	return &ProvisionClient{
		lists: lists,
	}
}

// ApplyDefinition implements sharepoint.ProvisionClient.ApplyDefinition.
// Lists and fields already present are left untouched.
func (c *ProvisionClient) ApplyDefinition(ctx context.Context, definition []byte) (*sharepoint.ProvisionResult, error) {
	siteDef, err := sharepoint.ParseSiteDefinition(definition)
	if err != nil {
		return nil, err
	}

	result := &sharepoint.ProvisionResult{}

	for _, listDef := range siteDef.Lists {
		existing, missingFields, err := c.diffList(ctx, &listDef)
		if err != nil {
			return nil, err
		}

		if !existing {
			_, err = c.lists.Create(ctx, &sharepoint.ListCreateRequest{
				Title:       listDef.Title,
				Description: listDef.Description,
			})
			if err != nil {
				return nil, fmt.Errorf("provisioning list %q: %w", listDef.Title, err)
			}

			result.CreatedLists = append(result.CreatedLists, listDef.Title)
			missingFields = listDef.Fields
		}

		if existing && len(missingFields) == 0 {
			result.Unchanged = append(result.Unchanged, listDef.Title)

			continue
		}

		for _, fieldDef := range missingFields {
			err = c.lists.CreateField(ctx, listDef.Title, &fieldDef)
			if err != nil {
				return nil, fmt.Errorf("provisioning field %q on %q: %w", fieldDef.Name, listDef.Title, err)
			}

			result.CreatedFields = append(result.CreatedFields, listDef.Title+"/"+fieldDef.Name)
		}
	}

	return result, nil
}

// DiffDefinition implements sharepoint.ProvisionClient.DiffDefinition.
func (c *ProvisionClient) DiffDefinition(ctx context.Context, definition []byte) (*sharepoint.ProvisionDiff, error) {
	siteDef, err := sharepoint.ParseSiteDefinition(definition)
	if err != nil {
		return nil, err
	}

	diff := &sharepoint.ProvisionDiff{}

	for _, listDef := range siteDef.Lists {
		existing, missingFields, err := c.diffList(ctx, &listDef)
		if err != nil {
			return nil, err
		}

		if !existing {
			diff.MissingLists = append(diff.MissingLists, listDef.Title)

			continue
		}

		for _, fieldDef := range missingFields {
			diff.MissingFields = append(diff.MissingFields, listDef.Title+"/"+fieldDef.Name)
		}
	}

	return diff, nil
}

// diffList reports whether the list exists and which declared fields it is
// missing.
func (c *ProvisionClient) diffList(ctx context.Context, listDef *sharepoint.ListDefinition) (bool, []sharepoint.FieldDefinition, error) {
	_, err := c.lists.Get(ctx, listDef.Title)
	if err != nil {
		if sharepoint.IsNotFound(err) {
			return false, nil, nil
		}

		return false, nil, err
	}

	if len(listDef.Fields) == 0 {
		return true, nil, nil
	}

	schema, err := c.lists.Fields(ctx, listDef.Title)
	if err != nil {
		return false, nil, err
	}

	present := make(map[string]bool, len(schema))
	for _, def := range schema {
		present[def.InternalName] = true
		present[def.Title] = true
	}

	var missing []sharepoint.FieldDefinition

	for _, fieldDef := range listDef.Fields {
		if !present[fieldDef.Name] {
			missing = append(missing, fieldDef)
		}
	}

	return true, missing, nil
}
