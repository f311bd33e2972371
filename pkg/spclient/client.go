// Package spclient provides the main entry point for creating SharePoint REST API clients
package spclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/fivetwenty-io/sharepoint/internal/auth"
	"github.com/fivetwenty-io/sharepoint/internal/client"
	"github.com/fivetwenty-io/sharepoint/internal/constants"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// New creates a new SharePoint API client with automatic ACS realm discovery.
func New(ctx context.Context, config *sharepoint.Config) (sharepoint.Client, error) {
	if config == nil {
		return nil, sharepoint.ErrConfigRequired
	}

	if config.SiteURL == "" {
		return nil, sharepoint.ErrSiteURLRequired
	}

	// Normalize site URL
	siteURL := strings.TrimSuffix(config.SiteURL, "/")
	if !strings.HasPrefix(siteURL, "http://") && !strings.HasPrefix(siteURL, "https://") {
		siteURL = "https://" + siteURL
	}

	parsed, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", sharepoint.ErrInvalidSiteURL, config.SiteURL)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", sharepoint.ErrNoHostInURL, config.SiteURL)
	}

	// Work on a copy so the caller's config is never mutated.
	cfg := *config
	cfg.SiteURL = siteURL

	// Realm discovery happens lazily on the first request, so an insecure
	// discovery transport has to be threaded in at construction time.
	if cfg.SkipTLSVerify && needsRealmDiscovery(&cfg) {
		return newWithInsecureDiscovery(&cfg)
	}

	spClient, err := client.New(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return spClient, nil
}

// needsRealmDiscovery checks if the config will trigger ACS realm discovery.
func needsRealmDiscovery(config *sharepoint.Config) bool {
	return config.AccessToken == "" &&
		config.ClientID != "" && config.ClientSecret != "" &&
		config.Realm == "" && config.TokenURL == ""
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("SHAREPOINT_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// createDiscoveryHTTPClient creates an HTTP client for realm discovery.
func createDiscoveryHTTPClient(skipTLS bool) (*http.Client, error) {
	httpClient := &http.Client{
		Timeout: constants.ShortHTTPTimeout,
	}

	if skipTLS {
		// Only allow insecure TLS in explicit development environments
		if isDevelopmentEnvironment() {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
			}
		} else {
			return nil, fmt.Errorf("%w (set SHAREPOINT_DEV_MODE=true)", sharepoint.ErrSkipTLSOnlyInDev)
		}
	}

	return httpClient, nil
}

// newWithInsecureDiscovery builds a client whose deferred realm discovery
// uses a TLS-skipping transport. Gated behind SHAREPOINT_DEV_MODE.
func newWithInsecureDiscovery(config *sharepoint.Config) (sharepoint.Client, error) {
	discoveryClient, err := createDiscoveryHTTPClient(true)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewLazyACSTokenManager(config.SiteURL, config.ClientID, config.ClientSecret, discoveryClient)

	spClient, err := client.NewWithTokenManager(config, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return spClient, nil
}

// NewWithSite creates a new client with just a site URL (no auth).
func NewWithSite(ctx context.Context, siteURL string) (sharepoint.Client, error) {
	return New(ctx, &sharepoint.Config{
		SiteURL: siteURL,
	})
}

// NewWithToken creates a new client with a site URL and access token.
func NewWithToken(ctx context.Context, siteURL, token string) (sharepoint.Client, error) {
	return New(ctx, &sharepoint.Config{
		SiteURL:     siteURL,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
// With an empty realm, the tenant realm is discovered from the site's 401
// challenge on first use.
func NewWithClientCredentials(ctx context.Context, siteURL, clientID, clientSecret string) (sharepoint.Client, error) {
	return New(ctx, &sharepoint.Config{
		SiteURL:      siteURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using username/password authentication.
func NewWithPassword(ctx context.Context, siteURL, username, password string) (sharepoint.Client, error) {
	return New(ctx, &sharepoint.Config{
		SiteURL:  siteURL,
		Username: username,
		Password: password,
	})
}
