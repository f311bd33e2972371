package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/fivetwenty-io/sharepoint/internal/constants"
)

// Static errors for realm discovery.
var (
	ErrNoRealmInChallenge   = errors.New("no realm found in authentication challenge")
	ErrRealmDiscoveryFailed = errors.New("realm discovery request failed")
)

var realmPattern = regexp.MustCompile(`realm="([^"]+)"`)

// DiscoverRealm determines the tenant realm of a SharePoint site by probing
// the client.svc endpoint with an empty Bearer token. The 401 challenge
// carries the realm in its WWW-Authenticate header.
func DiscoverRealm(ctx context.Context, httpClient *http.Client, siteURL string) (string, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	probeURL := siteURL + "/_vti_bin/client.svc"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating realm discovery request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRealmDiscoveryFailed, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusUnauthorized {
		return "", fmt.Errorf("%w: unexpected status %d", ErrRealmDiscoveryFailed, resp.StatusCode)
	}

	challenge := resp.Header.Get("WWW-Authenticate")

	match := realmPattern.FindStringSubmatch(challenge)
	if match == nil {
		return "", ErrNoRealmInChallenge
	}

	return match[1], nil
}

// LazyACSTokenManager defers realm discovery to the first token request so
// that client construction never touches the network.
type LazyACSTokenManager struct {
	siteURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu       sync.Mutex
	delegate *OAuth2TokenManager
}

// NewLazyACSTokenManager creates a token manager that discovers the ACS
// realm on first use. A nil httpClient gets a short-timeout default.
func NewLazyACSTokenManager(siteURL, clientID, clientSecret string, httpClient *http.Client) *LazyACSTokenManager {
	return &LazyACSTokenManager{
		siteURL:      siteURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

func (m *LazyACSTokenManager) resolve(ctx context.Context) (*OAuth2TokenManager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.delegate != nil {
		return m.delegate, nil
	}

	realm, err := DiscoverRealm(ctx, m.httpClient, m.siteURL)
	if err != nil {
		return nil, err
	}

	host := m.siteURL
	if parsed, err := url.Parse(m.siteURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	m.delegate = NewACSTokenManager(host, realm, m.clientID, m.clientSecret)

	return m.delegate, nil
}

// GetToken returns a valid access token, discovering the realm first if
// needed.
func (m *LazyACSTokenManager) GetToken(ctx context.Context) (string, error) {
	delegate, err := m.resolve(ctx)
	if err != nil {
		return "", err
	}

	return delegate.GetToken(ctx)
}

// RefreshToken forces a new token fetch.
func (m *LazyACSTokenManager) RefreshToken(ctx context.Context) error {
	delegate, err := m.resolve(ctx)
	if err != nil {
		return err
	}

	return delegate.RefreshToken(ctx)
}

// SetToken manually sets the access token, bypassing discovery.
func (m *LazyACSTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.delegate == nil {
		m.delegate = NewOAuth2TokenManager(&OAuth2Config{})
	}

	m.delegate.SetToken(token, expiresAt)
}
