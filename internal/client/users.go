package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// UsersClient implements sharepoint.UsersClient.
type UsersClient struct {
	httpClient *http.Client
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *http.Client) *UsersClient {
	return &UsersClient{
		httpClient: httpClient,
	}
}

// Get implements sharepoint.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, userID int) (*sharepoint.SiteUser, error) {
	path := "/_api/web/siteusers/getbyid(" + strconv.Itoa(userID) + ")"

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting site user: %w", err)
	}

	var user sharepoint.SiteUser

	err = json.Unmarshal(resp.Body, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing site user: %w", err)
	}

	return &user, nil
}

// List implements sharepoint.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, params *sharepoint.QueryParams) (*sharepoint.ListResponse[sharepoint.SiteUser], error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/_api/web/siteusers", queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing site users: %w", err)
	}

	var list sharepoint.ListResponse[sharepoint.SiteUser]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing site users response: %w", err)
	}

	return &list, nil
}

// EmailByID implements sharepoint.UsersClient.EmailByID. The principal name
// takes precedence over the profile email.
func (c *UsersClient) EmailByID(ctx context.Context, userID int) (string, error) {
	user, err := c.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.UserPrincipalName != "" {
		return user.UserPrincipalName, nil
	}

	if user.Email != "" {
		return user.Email, nil
	}

	return "", fmt.Errorf("%w: id %d has no email", sharepoint.ErrUserNotFound, userID)
}
