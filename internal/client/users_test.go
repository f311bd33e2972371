package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	internalhttp "github.com/fivetwenty-io/sharepoint/internal/http"
	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_api/web/siteusers/getbyid(12)", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		user := sharepoint.SiteUser{
			ID:                12,
			Title:             "Jordan Example",
			Email:             "jordan@contoso.com",
			UserPrincipalName: "jordan@contoso.onmicrosoft.com",
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	}))
	defer server.Close()

	users := NewUsersClient(internalhttp.NewClient(server.URL, nil))

	user, err := users.Get(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, user.ID)
	assert.Equal(t, "Jordan Example", user.Title)
}

func TestUsersClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_api/web/siteusers", r.URL.Path)

		response := sharepoint.ListResponse[sharepoint.SiteUser]{
			Value: []sharepoint.SiteUser{
				{ID: 1, Title: "Admin", IsSiteAdmin: true},
				{ID: 2, Title: "Member"},
			},
		}

		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	users := NewUsersClient(internalhttp.NewClient(server.URL, nil))

	list, err := users.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Value, 2)
	assert.True(t, list.Value[0].IsSiteAdmin)
}

func TestUsersClient_EmailByID(t *testing.T) {
	tests := []struct {
		name     string
		user     sharepoint.SiteUser
		expected string
		wantErr  bool
	}{
		{
			name: "prefers principal name",
			user: sharepoint.SiteUser{
				ID:                1,
				Email:             "stale@contoso.com",
				UserPrincipalName: "current@contoso.com",
			},
			expected: "current@contoso.com",
		},
		{
			name: "falls back to email",
			user: sharepoint.SiteUser{
				ID:    2,
				Email: "only@contoso.com",
			},
			expected: "only@contoso.com",
		},
		{
			name:    "neither available",
			user:    sharepoint.SiteUser{ID: 3, Title: "Service Account"},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(testCase.user)
			}))
			defer server.Close()

			users := NewUsersClient(internalhttp.NewClient(server.URL, nil))

			email, err := users.EmailByID(context.Background(), testCase.user.ID)

			if testCase.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, sharepoint.ErrUserNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.expected, email)
			}
		})
	}
}

func TestUsersClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteODataError(w, http.StatusNotFound, "-2146232832, Microsoft.SharePoint.SPException",
			"User cannot be found.")
	}))
	defer server.Close()

	users := NewUsersClient(internalhttp.NewClient(server.URL, nil))

	_, err := users.Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))
}
