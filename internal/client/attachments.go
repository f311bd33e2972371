package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// AttachmentsClient implements sharepoint.AttachmentsClient.
type AttachmentsClient struct {
	httpClient *http.Client
}

// NewAttachmentsClient creates a new attachments client.
func NewAttachmentsClient(httpClient *http.Client) *AttachmentsClient {
	return &AttachmentsClient{
		httpClient: httpClient,
	}
}

func attachmentsPath(listName string, itemID int) string {
	return itemPath(listName, itemID) + "/AttachmentFiles"
}

func attachmentPath(listName string, itemID int, fileName string) string {
	return attachmentsPath(listName, itemID) + "('" + quoteArg(fileName) + "')"
}

// List implements sharepoint.AttachmentsClient.List.
func (c *AttachmentsClient) List(ctx context.Context, listName string, itemID int) ([]sharepoint.Attachment, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	resp, err := c.httpClient.Get(ctx, attachmentsPath(listName, itemID), nil)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.Attachment]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing attachments response: %w", err)
	}

	return list.Value, nil
}

// Upload implements sharepoint.AttachmentsClient.Upload.
func (c *AttachmentsClient) Upload(ctx context.Context, listName string, itemID int, fileName string, content io.Reader) (*sharepoint.Attachment, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	if fileName == "" {
		return nil, sharepoint.ErrFileNameRequired
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("reading attachment content: %w", err)
	}

	path := attachmentsPath(listName, itemID) + "/add(FileName='" + quoteArg(fileName) + "')"

	resp, err := c.httpClient.Post(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("uploading attachment: %w", err)
	}

	var attachment sharepoint.Attachment

	err = json.Unmarshal(resp.Body, &attachment)
	if err != nil {
		return nil, fmt.Errorf("parsing attachment response: %w", err)
	}

	return &attachment, nil
}

// Download implements sharepoint.AttachmentsClient.Download.
func (c *AttachmentsClient) Download(ctx context.Context, listName string, itemID int, fileName string) ([]byte, error) {
	if listName == "" {
		return nil, sharepoint.ErrListNameRequired
	}

	if fileName == "" {
		return nil, sharepoint.ErrFileNameRequired
	}

	resp, err := c.httpClient.Get(ctx, attachmentPath(listName, itemID, fileName)+"/$value", nil)
	if err != nil {
		return nil, fmt.Errorf("downloading attachment: %w", err)
	}

	return resp.Body, nil
}

// Delete implements sharepoint.AttachmentsClient.Delete.
func (c *AttachmentsClient) Delete(ctx context.Context, listName string, itemID int, fileName string) error {
	if listName == "" {
		return sharepoint.ErrListNameRequired
	}

	if fileName == "" {
		return sharepoint.ErrFileNameRequired
	}

	_, err := c.httpClient.Delete(ctx, attachmentPath(listName, itemID, fileName))
	if err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}

	return nil
}
