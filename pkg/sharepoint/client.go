package sharepoint

import (
	"context"
	"io"
	"time"
)

// ListsClient provides access to list metadata.
type ListsClient interface {
	// Get returns the list with the given display title.
	Get(ctx context.Context, listName string) (*List, error)

	// List returns the non-hidden lists of the site.
	List(ctx context.Context, params *QueryParams) (*ListResponse[List], error)

	// Create creates a new list. A nil request beyond Title gets the
	// generic list template with content types allowed.
	Create(ctx context.Context, request *ListCreateRequest) (*List, error)

	// Delete removes the list with the given display title.
	Delete(ctx context.Context, listName string) error

	// Fields returns the writable schema of the list: its non-hidden
	// field definitions.
	Fields(ctx context.Context, listName string) ([]FieldDef, error)
}

// ItemsClient provides access to list items.
type ItemsClient interface {
	// List returns one page of items from the named list.
	List(ctx context.Context, listName string, params *QueryParams) (*ListResponse[Item], error)

	// ListWithPath fetches one page of items at an explicit collection
	// path. It backs the pagination helpers.
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[Item], error)

	// GetAll collects every item of the list, following server
	// continuations.
	GetAll(ctx context.Context, listName string, params *QueryParams) ([]Item, error)

	// Get returns a single item by ID.
	Get(ctx context.Context, listName string, itemID int) (*Item, error)

	// Create adds an item with the given column values.
	Create(ctx context.Context, listName string, fields FieldValues) (*Item, error)

	// Update merges the given column values into an existing item.
	Update(ctx context.Context, listName string, itemID int, fields FieldValues) (*Item, error)

	// Delete removes an item.
	Delete(ctx context.Context, listName string, itemID int) error
}

// AttachmentsClient provides access to item attachments.
type AttachmentsClient interface {
	// List returns the attachments of an item.
	List(ctx context.Context, listName string, itemID int) ([]Attachment, error)

	// Upload attaches content to an item under the given file name.
	Upload(ctx context.Context, listName string, itemID int, fileName string, content io.Reader) (*Attachment, error)

	// Download returns the raw bytes of an attachment.
	Download(ctx context.Context, listName string, itemID int, fileName string) ([]byte, error)

	// Delete removes an attachment.
	Delete(ctx context.Context, listName string, itemID int, fileName string) error
}

// FoldersClient provides access to site folders.
type FoldersClient interface {
	// Get returns the folder at a server-relative path.
	Get(ctx context.Context, serverRelativePath string) (*Folder, error)

	// Create creates folderName under the parent path.
	Create(ctx context.Context, parentPath, folderName string) (*Folder, error)

	// Exists reports whether folderName exists under the parent path.
	Exists(ctx context.Context, parentPath, folderName string) (bool, error)

	// List returns the subfolders of the folder at a server-relative path.
	List(ctx context.Context, serverRelativePath string) ([]Folder, error)

	// Delete removes an empty folder.
	Delete(ctx context.Context, serverRelativePath string) error

	// DeleteRecursive removes a folder after deleting its files and
	// subfolders, depth first.
	DeleteRecursive(ctx context.Context, serverRelativePath string) error
}

// FilesClient provides access to files stored in folders.
type FilesClient interface {
	// List returns the files of the folder at a server-relative path.
	List(ctx context.Context, folderPath string) ([]File, error)

	// Upload stores content as fileName inside the folder, overwriting
	// any existing file of that name.
	Upload(ctx context.Context, folderPath, fileName string, content io.Reader) (*File, error)

	// Download returns the raw bytes of a file.
	Download(ctx context.Context, folderPath, fileName string) ([]byte, error)

	// Delete removes a file.
	Delete(ctx context.Context, folderPath, fileName string) error
}

// UsersClient provides access to the site user collection.
type UsersClient interface {
	// Get returns a site user by numeric ID.
	Get(ctx context.Context, userID int) (*SiteUser, error)

	// List returns the site users.
	List(ctx context.Context, params *QueryParams) (*ListResponse[SiteUser], error)

	// EmailByID returns the principal name (email) of a site user.
	EmailByID(ctx context.Context, userID int) (string, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Lists() ListsClient
	Items() ItemsClient
	Attachments() AttachmentsClient
	Folders() FoldersClient
	Files() FilesClient
	Users() UsersClient
	Provision() ProvisionClient
}

// WebClient provides access to site-level information.
type WebClient interface {
	// GetWeb returns metadata for the site addressed by the configured
	// site URL.
	GetWeb(ctx context.Context) (*Web, error)
}

// Client is the full SharePoint REST client surface.
type Client interface {
	ResourceClients
	WebClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a sharepoint.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/spclient and internal/client):
//  1. AccessToken: if set, it is used directly as a static Bearer token.
//  2. ClientID/ClientSecret: uses the OAuth2 client_credentials grant. When
//     TokenURL is empty, spclient.New discovers the tenant realm from the
//     site's 401 challenge and targets the ACS token endpoint, forming the
//     app-only principal "<client_id>@<realm>".
//  3. Username/Password: uses the OAuth2 password grant against TokenURL.
//  4. No credentials: requests are sent without authentication (anonymous
//     sites only).
//
// Credentials are not validated at construction time; the first remote call
// acquires a token and surfaces authentication failures.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior can be tuned via RetryMax/RetryWaitMin/
// RetryWaitMax; retries apply to 429 and 5xx responses only and happen
// entirely inside the transport. SkipTLSVerify is only honored during realm
// discovery and only when SHAREPOINT_DEV_MODE is set to "true" or "1".
type Config struct {
	// Required fields
	// SiteURL: base URL of the site, e.g.
	// "https://contoso.sharepoint.com/sites/test". spclient.New normalizes
	// this value by trimming a trailing slash and adding "https://" if no
	// scheme is present.
	SiteURL string

	// Authentication options (provide one)
	// ClientID: Azure ACS / AD client ID for app-only access.
	ClientID string
	// ClientSecret: secret used with ClientID.
	ClientSecret string
	// Realm: tenant realm (tenant ID) for the ACS client_credentials
	// grant. If empty it is discovered from the site's 401 challenge.
	Realm string
	// Username: account for the OAuth2 password grant.
	Username string
	// Password: password for the OAuth2 password grant.
	Password string
	// RefreshToken: optional refresh token used to renew access tokens.
	RefreshToken string
	// AccessToken: if set, used directly as a Bearer token.
	AccessToken string
	// TokenURL: full OAuth2 token endpoint. If empty and authentication is
	// required, spclient.New derives it from the discovered realm.
	TokenURL string

	// Optional configurations
	// HTTPTimeout: optional default HTTP timeout where supported.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500,
	// 429, and connection errors). If 0, a sensible default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// SkipTLSVerify: if true, TLS verification is skipped during realm
	// discovery only, and only when SHAREPOINT_DEV_MODE is set.
	SkipTLSVerify bool
	// ValidateFields: when true, item create/update payloads are checked
	// against the list's field schema before any remote call.
	ValidateFields bool
	// Cache: optional cache configuration for list and schema metadata.
	// Nil disables caching.
	Cache *CacheConfig
}
