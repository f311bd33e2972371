package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverRealm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_vti_bin/client.svc", r.URL.Path)
		assert.Equal(t, "Bearer", r.Header.Get("Authorization"))

		w.Header().Set("WWW-Authenticate",
			`Bearer realm="5e3a4f2a-1111-2222-3333-444455556666",client_id="00000003-0000-0ff1-ce00-000000000000"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	realm, err := DiscoverRealm(context.Background(), nil, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "5e3a4f2a-1111-2222-3333-444455556666", realm)
}

func TestDiscoverRealm_NoRealm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := DiscoverRealm(context.Background(), nil, server.URL)
	require.ErrorIs(t, err, ErrNoRealmInChallenge)
}

func TestDiscoverRealm_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := DiscoverRealm(context.Background(), nil, server.URL)
	require.ErrorIs(t, err, ErrRealmDiscoveryFailed)
}

func TestLazyACSTokenManager_DiscoversOnFirstUse(t *testing.T) {
	var tokenServer *httptest.Server

	tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "discovered-token",
			"expires_in":   "3600",
		})
	}))
	defer tokenServer.Close()

	discoveries := 0

	siteServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		discoveries++

		w.Header().Set("WWW-Authenticate", `Bearer realm="test-realm"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer siteServer.Close()

	manager := NewLazyACSTokenManager(siteServer.URL, "app-id", "app-secret", nil)

	// Redirect the resolved delegate at the local token server.
	_, err := manager.resolve(context.Background())
	require.NoError(t, err)
	manager.delegate.config.TokenURL = tokenServer.URL

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "discovered-token", token)

	// Discovery happens once, later calls reuse the delegate.
	_, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, discoveries)
}
