package spclient

import (
	"context"
	"fmt"
	"io"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// Credentials holds the authentication material for NewManager. Provide one
// of AccessToken, ClientID/ClientSecret, or Username/Password.
type Credentials struct {
	AccessToken  string
	ClientID     string
	ClientSecret string
	Realm        string
	Username     string
	Password     string
	TokenURL     string
}

// SharePointManager is a convenience wrapper over the resource clients for
// the common list/item/attachment workflows. It adds defaults and small
// compositions; everything it does is also available on the underlying
// sharepoint.Client.
type SharePointManager struct {
	client sharepoint.Client
}

// NewManager creates a SharePointManager for the given site.
func NewManager(ctx context.Context, siteURL string, creds Credentials) (*SharePointManager, error) {
	spClient, err := New(ctx, &sharepoint.Config{
		SiteURL:      siteURL,
		AccessToken:  creds.AccessToken,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Realm:        creds.Realm,
		Username:     creds.Username,
		Password:     creds.Password,
		TokenURL:     creds.TokenURL,
	})
	if err != nil {
		return nil, err
	}

	return &SharePointManager{client: spClient}, nil
}

// NewManagerWithClient wraps an existing client.
func NewManagerWithClient(spClient sharepoint.Client) *SharePointManager {
	return &SharePointManager{client: spClient}
}

// Client returns the underlying client for operations the manager does not
// wrap.
func (m *SharePointManager) Client() sharepoint.Client {
	return m.client
}

// GetListItems returns every item of the list, following server
// continuations.
func (m *SharePointManager) GetListItems(ctx context.Context, listName string) ([]sharepoint.Item, error) {
	return m.client.Items().GetAll(ctx, listName, nil)
}

// FilterListItems returns the items of the list matching a client-side
// filter expression, e.g. `Status == "Open" && Priority > 2`.
func (m *SharePointManager) FilterListItems(ctx context.Context, listName, expression string) ([]sharepoint.Item, error) {
	filter, err := sharepoint.CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	items, err := m.client.Items().GetAll(ctx, listName, nil)
	if err != nil {
		return nil, err
	}

	return filter.FilterItems(items), nil
}

// MatchListItems returns the items whose columns equal every given
// column/value pair exactly.
func (m *SharePointManager) MatchListItems(ctx context.Context, listName string, matches []sharepoint.FieldMatch) ([]sharepoint.Item, error) {
	items, err := m.client.Items().GetAll(ctx, listName, nil)
	if err != nil {
		return nil, err
	}

	return sharepoint.MatchItems(items, matches), nil
}

// AddItem creates an item in the list.
func (m *SharePointManager) AddItem(ctx context.Context, listName string, fields sharepoint.FieldValues) (*sharepoint.Item, error) {
	return m.client.Items().Create(ctx, listName, fields)
}

// AddItemWithAttachment creates an item and attaches content to it in one
// call. The item is returned even if the attachment upload fails, alongside
// the upload error.
func (m *SharePointManager) AddItemWithAttachment(ctx context.Context, listName string, fields sharepoint.FieldValues, fileName string, content io.Reader) (*sharepoint.Item, error) {
	item, err := m.client.Items().Create(ctx, listName, fields)
	if err != nil {
		return nil, err
	}

	_, err = m.client.Attachments().Upload(ctx, listName, item.ID, fileName, content)
	if err != nil {
		return item, fmt.Errorf("attaching %q to item %d: %w", fileName, item.ID, err)
	}

	return item, nil
}

// UpdateItem merges the given column values into an existing item.
func (m *SharePointManager) UpdateItem(ctx context.Context, listName string, itemID int, fields sharepoint.FieldValues) (*sharepoint.Item, error) {
	return m.client.Items().Update(ctx, listName, itemID, fields)
}

// DeleteItem removes an item.
func (m *SharePointManager) DeleteItem(ctx context.Context, listName string, itemID int) error {
	return m.client.Items().Delete(ctx, listName, itemID)
}

// UploadAttachment attaches content to an item.
func (m *SharePointManager) UploadAttachment(ctx context.Context, listName string, itemID int, fileName string, content io.Reader) (*sharepoint.Attachment, error) {
	return m.client.Attachments().Upload(ctx, listName, itemID, fileName, content)
}

// DownloadAttachment returns the raw bytes of an attachment.
func (m *SharePointManager) DownloadAttachment(ctx context.Context, listName string, itemID int, fileName string) ([]byte, error) {
	return m.client.Attachments().Download(ctx, listName, itemID, fileName)
}

// DeleteAttachment removes an attachment.
func (m *SharePointManager) DeleteAttachment(ctx context.Context, listName string, itemID int, fileName string) error {
	return m.client.Attachments().Delete(ctx, listName, itemID, fileName)
}

// CreateList creates a generic list with the given title and description.
func (m *SharePointManager) CreateList(ctx context.Context, title, description string) (*sharepoint.List, error) {
	return m.client.Lists().Create(ctx, &sharepoint.ListCreateRequest{
		Title:       title,
		Description: description,
	})
}

// CreateFolder creates folderName under the parent path.
func (m *SharePointManager) CreateFolder(ctx context.Context, parentPath, folderName string) (*sharepoint.Folder, error) {
	return m.client.Folders().Create(ctx, parentPath, folderName)
}

// FolderExists reports whether folderName exists under the parent path.
func (m *SharePointManager) FolderExists(ctx context.Context, parentPath, folderName string) (bool, error) {
	return m.client.Folders().Exists(ctx, parentPath, folderName)
}

// UploadFile stores content as fileName inside the folder, overwriting any
// existing file of that name.
func (m *SharePointManager) UploadFile(ctx context.Context, folderPath, fileName string, content io.Reader) (*sharepoint.File, error) {
	return m.client.Files().Upload(ctx, folderPath, fileName, content)
}

// Folders returns the subfolders of the folder at a server-relative path.
func (m *SharePointManager) Folders(ctx context.Context, serverRelativePath string) ([]sharepoint.Folder, error) {
	return m.client.Folders().List(ctx, serverRelativePath)
}

// Files returns the files of the folder at a server-relative path.
func (m *SharePointManager) Files(ctx context.Context, folderPath string) ([]sharepoint.File, error) {
	return m.client.Files().List(ctx, folderPath)
}

// DeleteFolderRecursive removes a folder after deleting its files and
// subfolders, depth first.
func (m *SharePointManager) DeleteFolderRecursive(ctx context.Context, serverRelativePath string) error {
	return m.client.Folders().DeleteRecursive(ctx, serverRelativePath)
}

// UserEmail returns the principal name (email) of a site user.
func (m *SharePointManager) UserEmail(ctx context.Context, userID int) (string, error) {
	return m.client.Users().EmailByID(ctx, userID)
}
