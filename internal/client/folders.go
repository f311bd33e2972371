package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// FoldersClient implements sharepoint.FoldersClient.
type FoldersClient struct {
	httpClient *http.Client
}

// NewFoldersClient creates a new folders client.
func NewFoldersClient(httpClient *http.Client) *FoldersClient {
	return &FoldersClient{
		httpClient: httpClient,
	}
}

// Get implements sharepoint.FoldersClient.Get.
func (c *FoldersClient) Get(ctx context.Context, serverRelativePath string) (*sharepoint.Folder, error) {
	if serverRelativePath == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	resp, err := c.httpClient.Get(ctx, folderPath(serverRelativePath), nil)
	if err != nil {
		return nil, fmt.Errorf("getting folder: %w", err)
	}

	var folder sharepoint.Folder

	err = json.Unmarshal(resp.Body, &folder)
	if err != nil {
		return nil, fmt.Errorf("parsing folder: %w", err)
	}

	return &folder, nil
}

// Create implements sharepoint.FoldersClient.Create.
func (c *FoldersClient) Create(ctx context.Context, parentPath, folderName string) (*sharepoint.Folder, error) {
	if parentPath == "" || folderName == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	payload := map[string]string{
		"ServerRelativeUrl": joinFolder(parentPath, folderName),
	}

	resp, err := c.httpClient.Post(ctx, "/_api/web/folders", payload)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}

	var folder sharepoint.Folder

	err = json.Unmarshal(resp.Body, &folder)
	if err != nil {
		return nil, fmt.Errorf("parsing folder response: %w", err)
	}

	return &folder, nil
}

// Exists implements sharepoint.FoldersClient.Exists. A missing folder is
// reported as false, not as an error.
func (c *FoldersClient) Exists(ctx context.Context, parentPath, folderName string) (bool, error) {
	if parentPath == "" || folderName == "" {
		return false, sharepoint.ErrFolderPathRequired
	}

	folder, err := c.Get(ctx, joinFolder(parentPath, folderName))
	if err != nil {
		if sharepoint.IsNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return folder.Exists, nil
}

// List implements sharepoint.FoldersClient.List.
func (c *FoldersClient) List(ctx context.Context, serverRelativePath string) ([]sharepoint.Folder, error) {
	if serverRelativePath == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	resp, err := c.httpClient.Get(ctx, folderPath(serverRelativePath)+"/Folders", nil)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.Folder]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing folders response: %w", err)
	}

	return list.Value, nil
}

// Delete implements sharepoint.FoldersClient.Delete.
func (c *FoldersClient) Delete(ctx context.Context, serverRelativePath string) error {
	if serverRelativePath == "" {
		return sharepoint.ErrFolderPathRequired
	}

	_, err := c.httpClient.Delete(ctx, folderPath(serverRelativePath))
	if err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}

	return nil
}

// DeleteRecursive implements sharepoint.FoldersClient.DeleteRecursive. Files
// are removed first, then subfolders depth first, then the folder itself.
func (c *FoldersClient) DeleteRecursive(ctx context.Context, serverRelativePath string) error {
	if serverRelativePath == "" {
		return sharepoint.ErrFolderPathRequired
	}

	files := NewFilesClient(c.httpClient)

	folderFiles, err := files.List(ctx, serverRelativePath)
	if err != nil {
		return err
	}

	for _, file := range folderFiles {
		err = files.Delete(ctx, serverRelativePath, file.Name)
		if err != nil {
			return err
		}
	}

	subfolders, err := c.List(ctx, serverRelativePath)
	if err != nil {
		return err
	}

	for _, subfolder := range subfolders {
		err = c.DeleteRecursive(ctx, joinFolder(serverRelativePath, subfolder.Name))
		if err != nil {
			return err
		}
	}

	return c.Delete(ctx, serverRelativePath)
}
