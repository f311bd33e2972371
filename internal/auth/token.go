package auth

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/sharepoint/internal/constants"
)

// TokenManager manages access tokens for API requests.
type TokenManager interface {
	// GetToken returns a valid access token, fetching or refreshing as
	// needed.
	GetToken(ctx context.Context) (string, error)

	// RefreshToken forces a token refresh.
	RefreshToken(ctx context.Context) error

	// SetToken manually sets the access token.
	SetToken(token string, expiresAt time.Time)
}

// Token is an OAuth2 token response plus derived expiry.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    Seconds   `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Seconds is an integer second count that tolerates both numeric and
// string JSON encodings. Azure AD returns expires_in as a number, ACS as a
// quoted string.
type Seconds int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		*s = 0

		return nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return err
	}

	*s = Seconds(value)

	return nil
}

// Valid reports whether the token can still be used. A token inside the
// expiry buffer counts as invalid so callers refresh before the server
// rejects it.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token behind a mutex so one Token can be
// shared by concurrent requests.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
