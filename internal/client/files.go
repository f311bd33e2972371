package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// FilesClient implements sharepoint.FilesClient.
type FilesClient struct {
	httpClient *http.Client
}

// NewFilesClient creates a new files client.
func NewFilesClient(httpClient *http.Client) *FilesClient {
	return &FilesClient{
		httpClient: httpClient,
	}
}

func filePath(folder, fileName string) string {
	return folderPath(folder) + "/Files('" + quoteArg(fileName) + "')"
}

// List implements sharepoint.FilesClient.List.
func (c *FilesClient) List(ctx context.Context, folder string) ([]sharepoint.File, error) {
	if folder == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	resp, err := c.httpClient.Get(ctx, folderPath(folder)+"/Files", nil)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.File]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing files response: %w", err)
	}

	return list.Value, nil
}

// Upload implements sharepoint.FilesClient.Upload. An existing file of the
// same name is overwritten.
func (c *FilesClient) Upload(ctx context.Context, folder, fileName string, content io.Reader) (*sharepoint.File, error) {
	if folder == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	if fileName == "" {
		return nil, sharepoint.ErrFileNameRequired
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("reading file content: %w", err)
	}

	path := folderPath(folder) + "/Files/add(url='" + quoteArg(fileName) + "',overwrite=true)"

	resp, err := c.httpClient.Post(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("uploading file: %w", err)
	}

	var file sharepoint.File

	err = json.Unmarshal(resp.Body, &file)
	if err != nil {
		return nil, fmt.Errorf("parsing file response: %w", err)
	}

	return &file, nil
}

// Download implements sharepoint.FilesClient.Download.
func (c *FilesClient) Download(ctx context.Context, folder, fileName string) ([]byte, error) {
	if folder == "" {
		return nil, sharepoint.ErrFolderPathRequired
	}

	if fileName == "" {
		return nil, sharepoint.ErrFileNameRequired
	}

	resp, err := c.httpClient.Get(ctx, filePath(folder, fileName)+"/$value", nil)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}

	return resp.Body, nil
}

// Delete implements sharepoint.FilesClient.Delete.
func (c *FilesClient) Delete(ctx context.Context, folder, fileName string) error {
	if folder == "" {
		return sharepoint.ErrFolderPathRequired
	}

	if fileName == "" {
		return sharepoint.ErrFileNameRequired
	}

	_, err := c.httpClient.Delete(ctx, filePath(folder, fileName))
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}

	return nil
}
