package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/sharepoint/internal/constants"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// Static errors for oauth flows.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
)

// OAuth2Config configures the OAuth2 token manager. The zero value of each
// field means "not provided"; the manager picks a grant from what is set.
type OAuth2Config struct {
	// TokenURL is the full token endpoint.
	TokenURL string
	// ClientID and ClientSecret select the client_credentials grant. ACS
	// expects the credentials in the form body, so they are always sent
	// there rather than via basic auth.
	ClientID     string
	ClientSecret string
	// Resource is the ACS audience, e.g.
	// "00000003-0000-0ff1-ce00-000000000000/contoso.sharepoint.com@realm".
	Resource string
	// Scopes requested with the token, optional.
	Scopes []string
	// Username and Password select the password grant.
	Username string
	Password string
	// RefreshToken seeds the refresh_token grant.
	RefreshToken string
	// AccessToken seeds the store with an already-acquired token.
	AccessToken string
}

// OAuth2TokenManager acquires and refreshes tokens using standard OAuth2
// grants. Nothing is fetched until the first GetToken call.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
}

// NewOAuth2TokenManager creates a token manager from config.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken: config.AccessToken,
			TokenType:   "bearer",
		})
	} else if config.RefreshToken != "" {
		manager.store.Set(&Token{
			RefreshToken: config.RefreshToken,
		})
	}

	return manager
}

// GetToken returns a valid access token, fetching one if needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken forces a new token fetch regardless of current validity.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	return m.fetchToken(ctx)
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// fetchToken picks a grant from the available credentials and stores the
// result. Refresh tokens are preferred, then client credentials, then the
// password grant.
func (m *OAuth2TokenManager) fetchToken(ctx context.Context) error {
	form, err := m.grantForm()
	if err != nil {
		return err
	}

	return m.requestToken(ctx, form)
}

func (m *OAuth2TokenManager) grantForm() (url.Values, error) {
	current := m.store.Get()

	switch {
	case current != nil && current.RefreshToken != "":
		form := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {current.RefreshToken},
		}
		m.addClientCredentials(form)

		return form, nil

	case m.config.ClientID != "" && m.config.ClientSecret != "":
		form := url.Values{
			"grant_type": {"client_credentials"},
		}
		m.addClientCredentials(form)

		if m.config.Resource != "" {
			form.Set("resource", m.config.Resource)
		}

		if len(m.config.Scopes) > 0 {
			form.Set("scope", strings.Join(m.config.Scopes, " "))
		}

		return form, nil

	case m.config.Username != "" && m.config.Password != "":
		form := url.Values{
			"grant_type": {"password"},
			"username":   {m.config.Username},
			"password":   {m.config.Password},
		}
		m.addClientCredentials(form)

		return form, nil

	default:
		return nil, ErrNoValidCredentials
	}
}

func (m *OAuth2TokenManager) addClientCredentials(form url.Values) {
	if m.config.ClientID != "" {
		form.Set("client_id", m.config.ClientID)
	}

	if m.config.ClientSecret != "" {
		form.Set("client_secret", m.config.ClientSecret)
	}
}

func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return tokenErrorFromBody(resp.StatusCode, body)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	if token.TokenType == "" {
		token.TokenType = "bearer"
	}

	m.store.Set(&token)

	return nil
}

// tokenErrorFromBody surfaces a token endpoint rejection as an APIError so
// callers can classify it with the sharepoint.Is* helpers. The OAuth2 error
// code and description become the error code and message.
func tokenErrorFromBody(statusCode int, body []byte) error {
	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}

	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		return fmt.Errorf("token request failed: %w", &sharepoint.APIError{
			StatusCode: statusCode,
			Code:       oauthErr.Error,
			Message:    oauthErr.Description,
		})
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return fmt.Errorf("token request failed: %w", &sharepoint.APIError{
		StatusCode: statusCode,
		Message:    message,
	})
}

// SharePointResourcePrincipal is the well-known principal ID of the
// SharePoint Online service used to build ACS resource strings.
const SharePointResourcePrincipal = "00000003-0000-0ff1-ce00-000000000000"

// ACSTokenURL builds the Azure Access Control Service token endpoint for a
// tenant realm.
func ACSTokenURL(realm string) string {
	return "https://accounts.accesscontrol.windows.net/" + realm + "/tokens/OAuth/2"
}

// NewACSTokenManager creates a token manager for the SharePoint app-only
// client_credentials grant against ACS. The client and resource carry the
// "@realm" suffix ACS expects.
func NewACSTokenManager(siteHost, realm, clientID, clientSecret string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     ACSTokenURL(realm),
		ClientID:     clientID + "@" + realm,
		ClientSecret: clientSecret,
		Resource:     SharePointResourcePrincipal + "/" + siteHost + "@" + realm,
	})
}
