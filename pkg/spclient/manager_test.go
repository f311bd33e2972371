package spclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/fivetwenty-io/sharepoint/pkg/spclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager builds a manager against a fake server, using a static
// token so no token endpoint is needed.
func newTestManager(t *testing.T, handler http.Handler) *spclient.SharePointManager {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	manager, err := spclient.NewManager(context.Background(), server.URL, spclient.Credentials{
		AccessToken: "test-token",
	})
	require.NoError(t, err)

	return manager
}

func tasksHandler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_api/web/lists/getbytitle('Tasks')/items", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"value": [
				{"Id": 1, "Title": "Ship release", "Status": "Open", "Priority": 3},
				{"Id": 2, "Title": "Write docs", "Status": "Closed", "Priority": 1},
				{"Id": 3, "Title": "Fix flaky test", "Status": "Open", "Priority": 1}
			]
		}`))
	})
}

func TestManager_GetListItems(t *testing.T) {
	manager := newTestManager(t, tasksHandler(t))

	items, err := manager.GetListItems(context.Background(), "Tasks")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Ship release", items[0].Title)
}

func TestManager_FilterListItems(t *testing.T) {
	manager := newTestManager(t, tasksHandler(t))

	items, err := manager.FilterListItems(context.Background(), "Tasks", `Status == "Open" && Priority > 2`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ship release", items[0].Title)
}

func TestManager_FilterListItems_InvalidExpression(t *testing.T) {
	manager := newTestManager(t, tasksHandler(t))

	_, err := manager.FilterListItems(context.Background(), "Tasks", "   ")
	require.ErrorIs(t, err, sharepoint.ErrEmptyFilterExpression)
}

func TestManager_MatchListItems(t *testing.T) {
	manager := newTestManager(t, tasksHandler(t))

	items, err := manager.MatchListItems(context.Background(), "Tasks", []sharepoint.FieldMatch{
		{Column: "Status", Value: "Open"},
		{Column: "Priority", Value: "1"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fix flaky test", items[0].Title)
}

func TestManager_AddItemWithAttachment(t *testing.T) {
	content := []byte("quarterly report")

	var uploaded []byte

	manager := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/_api/web/lists/getbytitle('Reports')/items":
			require.Equal(t, "POST", r.Method)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Id": 7, "Title": "Q3"}`))

		case "/_api/web/lists/getbytitle('Reports')/items(7)/AttachmentFiles/add(FileName='report.txt')":
			require.Equal(t, "POST", r.Method)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			uploaded = body

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(sharepoint.Attachment{FileName: "report.txt"})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))

	item, err := manager.AddItemWithAttachment(context.Background(), "Reports",
		sharepoint.FieldValues{"Title": "Q3"}, "report.txt", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 7, item.ID)
	assert.Equal(t, content, uploaded)
}

func TestManager_CreateList(t *testing.T) {
	manager := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_api/web/lists", r.URL.Path)
		require.Equal(t, "POST", r.Method)

		var request sharepoint.ListCreateRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "Archive", request.Title)
		assert.Equal(t, "Old items", request.Description)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sharepoint.List{Title: request.Title})
	}))

	list, err := manager.CreateList(context.Background(), "Archive", "Old items")
	require.NoError(t, err)
	assert.Equal(t, "Archive", list.Title)
}

func TestManager_UserEmail(t *testing.T) {
	manager := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_api/web/siteusers/getbyid(12)", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sharepoint.SiteUser{
			ID:                12,
			UserPrincipalName: "alex@contoso.com",
		})
	}))

	email, err := manager.UserEmail(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "alex@contoso.com", email)
}

func TestManager_FolderWorkflow(t *testing.T) {
	manager := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/_api/web/folders" && r.Method == "POST":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(sharepoint.Folder{
				Name:              "reports",
				ServerRelativeURL: "/sites/test/docs/reports",
				Exists:            true,
			})

		case r.URL.Path == "/_api/web/GetFolderByServerRelativeUrl('/sites/test/docs/reports')" && r.Method == "GET":
			_ = json.NewEncoder(w).Encode(sharepoint.Folder{Name: "reports", Exists: true})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))

	folder, err := manager.CreateFolder(context.Background(), "/sites/test/docs", "reports")
	require.NoError(t, err)
	assert.Equal(t, "reports", folder.Name)

	exists, err := manager.FolderExists(context.Background(), "/sites/test/docs", "reports")
	require.NoError(t, err)
	assert.True(t, exists)
}
