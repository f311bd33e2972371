// Package client implements the sharepoint.Client interface against the
// SharePoint REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/sharepoint/internal/auth"
	"github.com/fivetwenty-io/sharepoint/internal/constants"
	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// Client implements the sharepoint.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       sharepoint.Logger
	cacheManager *sharepoint.CacheManager

	// Resource clients
	lists       sharepoint.ListsClient
	items       sharepoint.ItemsClient
	attachments sharepoint.AttachmentsClient
	folders     sharepoint.FoldersClient
	files       sharepoint.FilesClient
	users       sharepoint.UsersClient
	provision   sharepoint.ProvisionClient
}

// createTokenManager creates the appropriate token manager based on config.
func createTokenManager(config *sharepoint.Config) auth.TokenManager {
	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		return createAppOnlyTokenManager(config)
	}

	if config.Username != "" && config.Password != "" {
		return createPasswordTokenManager(config)
	}

	if config.RefreshToken != "" && config.TokenURL != "" {
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:     config.TokenURL,
			RefreshToken: config.RefreshToken,
		})
	}

	return nil // No authentication
}

// createAppOnlyTokenManager builds a client_credentials token manager. With
// an explicit token endpoint the credentials are used as-is; with a known
// realm the ACS endpoint is derived; otherwise realm discovery is deferred
// until the first request so that construction stays offline.
func createAppOnlyTokenManager(config *sharepoint.Config) auth.TokenManager {
	host := siteHost(config.SiteURL)

	if config.Realm != "" {
		return auth.NewACSTokenManager(host, config.Realm, config.ClientID, config.ClientSecret)
	}

	if config.TokenURL != "" {
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:     config.TokenURL,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RefreshToken: config.RefreshToken,
			Resource:     "https://" + host,
		})
	}

	return auth.NewLazyACSTokenManager(config.SiteURL, config.ClientID, config.ClientSecret, nil)
}

// createPasswordTokenManager builds a password grant token manager. Without
// an explicit token endpoint the common Azure AD endpoint is used.
func createPasswordTokenManager(config *sharepoint.Config) auth.TokenManager {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = "https://login.microsoftonline.com/common/oauth2/token"
	}

	return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		Resource:     "https://" + siteHost(config.SiteURL),
	})
}

// siteHost extracts the host from a site URL.
func siteHost(siteURL string) string {
	parsed, err := url.Parse(siteURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(siteURL, "https://")
	}

	return parsed.Host
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *sharepoint.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// createCacheManager builds the metadata cache manager from config. A nil
// cache config disables caching.
func createCacheManager(config *sharepoint.Config) (*sharepoint.CacheManager, error) {
	if config.Cache == nil || config.Cache.Type == sharepoint.CacheTypeNone {
		return nil, nil //nolint:nilnil // absent cache is not an error
	}

	cache, err := sharepoint.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache backend: %w", err)
	}

	return sharepoint.NewCacheManager(cache, config.Cache.Options), nil
}

// New creates a new SharePoint API client. No remote call is made here; the
// first operation acquires a token and surfaces authentication failures.
func New(ctx context.Context, config *sharepoint.Config) (*Client, error) {
	if config == nil {
		return nil, sharepoint.ErrConfigRequired
	}

	if config.SiteURL == "" {
		return nil, sharepoint.ErrSiteURLRequired
	}

	tokenManager := createTokenManager(config)
	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.SiteURL, tokenManager, httpOpts...)

	cacheManager, err := createCacheManager(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.SiteURL,
		logger:       config.Logger,
		cacheManager: cacheManager,
	}

	client.initializeResourceClients(config)

	return client, nil
}

// NewWithTokenManager creates a new SharePoint API client with a custom
// token manager.
func NewWithTokenManager(config *sharepoint.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, sharepoint.ErrConfigRequired
	}

	if config.SiteURL == "" {
		return nil, sharepoint.ErrSiteURLRequired
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.SiteURL, tokenManager, httpOpts...)

	cacheManager, err := createCacheManager(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.SiteURL,
		logger:       config.Logger,
		cacheManager: cacheManager,
	}

	client.initializeResourceClients(config)

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", sharepoint.ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// GetWeb implements sharepoint.WebClient.GetWeb.
func (c *Client) GetWeb(ctx context.Context) (*sharepoint.Web, error) {
	resp, err := c.httpClient.Get(ctx, "/_api/web", nil)
	if err != nil {
		return nil, fmt.Errorf("getting web: %w", err)
	}

	var web sharepoint.Web

	err = json.Unmarshal(resp.Body, &web)
	if err != nil {
		return nil, fmt.Errorf("parsing web response: %w", err)
	}

	return &web, nil
}

// Resource client accessors

// Lists implements sharepoint.Client.Lists.
func (c *Client) Lists() sharepoint.ListsClient {
	return c.lists
}

// Items implements sharepoint.Client.Items.
func (c *Client) Items() sharepoint.ItemsClient {
	return c.items
}

// Attachments implements sharepoint.Client.Attachments.
func (c *Client) Attachments() sharepoint.AttachmentsClient {
	return c.attachments
}

// Folders implements sharepoint.Client.Folders.
func (c *Client) Folders() sharepoint.FoldersClient {
	return c.folders
}

// Files implements sharepoint.Client.Files.
func (c *Client) Files() sharepoint.FilesClient {
	return c.files
}

// Users implements sharepoint.Client.Users.
func (c *Client) Users() sharepoint.UsersClient {
	return c.users
}

// Provision implements sharepoint.Client.Provision.
func (c *Client) Provision() sharepoint.ProvisionClient {
	return c.provision
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients(config *sharepoint.Config) {
	listsClient := NewListsClient(c.httpClient, c.cacheManager)
	c.lists = listsClient

	itemsClient := NewItemsClient(c.httpClient)
	if config.ValidateFields {
		itemsClient.schemaSource = listsClient
	}

	c.items = itemsClient
	c.attachments = NewAttachmentsClient(c.httpClient)
	c.folders = NewFoldersClient(c.httpClient)
	c.files = NewFilesClient(c.httpClient)
	c.users = NewUsersClient(c.httpClient)
	c.provision = NewProvisionClient(listsClient)
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return sharepoint.ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// loggerAdapter adapts sharepoint.Logger to http.Logger.
type loggerAdapter struct {
	logger sharepoint.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
