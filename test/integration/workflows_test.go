package integration

import (
	"bytes"
	"context"
	"testing"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/fivetwenty-io/sharepoint/pkg/spclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, fake *FakeSharePoint) sharepoint.Client {
	t.Helper()

	client, err := spclient.NewWithToken(context.Background(), fake.Server.URL, "integration-token")
	require.NoError(t, err)

	return client
}

func TestConstructionIsOffline(t *testing.T) {
	fake := NewFakeSharePoint(t)

	_, err := spclient.NewWithClientCredentials(context.Background(), fake.Server.URL, "app-id", "app-secret")
	require.NoError(t, err)
	assert.Equal(t, 0, fake.Requests(), "construction must not touch the network")
}

func TestListLifecycle(t *testing.T) {
	fake := NewFakeSharePoint(t)
	client := newClient(t, fake)
	ctx := context.Background()

	created, err := client.Lists().Create(ctx, &sharepoint.ListCreateRequest{
		Title:       "Projects",
		Description: "Active projects",
	})
	require.NoError(t, err)
	assert.Equal(t, "Projects", created.Title)
	assert.Equal(t, sharepoint.ListTemplateGeneric, created.BaseTemplate)

	fetched, err := client.Lists().Get(ctx, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "Active projects", fetched.Description)

	all, err := client.Lists().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all.Value, 1)

	require.NoError(t, client.Lists().Delete(ctx, "Projects"))

	_, err = client.Lists().Get(ctx, "Projects")
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))
}

func TestMissingListReturnsNotFound(t *testing.T) {
	fake := NewFakeSharePoint(t)
	client := newClient(t, fake)

	_, err := client.Items().GetAll(context.Background(), "Nonexistent", nil)
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))
}

func TestItemWorkflow(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Tasks",
		sharepoint.FieldDef{InternalName: "Status", Title: "Status", Type: sharepoint.FieldTypeText},
		sharepoint.FieldDef{InternalName: "Priority", Title: "Priority", Type: sharepoint.FieldTypeInteger},
	)

	client := newClient(t, fake)
	ctx := context.Background()

	first, err := client.Items().Create(ctx, "Tasks", sharepoint.FieldValues{
		"Title": "Ship release", "Status": "Open", "Priority": 3,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := client.Items().Create(ctx, "Tasks", sharepoint.FieldValues{
		"Title": "Write docs", "Status": "Open", "Priority": 1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Each created item appears exactly once, in insertion order.
	items, err := client.Items().GetAll(ctx, "Tasks", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Ship release", items[0].Title)
	assert.Equal(t, "Write docs", items[1].Title)

	// Update merges and returns the fresh item state.
	updated, err := client.Items().Update(ctx, "Tasks", first.ID, sharepoint.FieldValues{
		"Status": "Closed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Closed", updated.Fields["Status"])
	assert.Equal(t, "Ship release", updated.Title)

	// Updating an absent item fails with a not-found classification.
	_, err = client.Items().Update(ctx, "Tasks", 999, sharepoint.FieldValues{"Status": "Closed"})
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))

	// Deleted items disappear from subsequent reads.
	require.NoError(t, client.Items().Delete(ctx, "Tasks", first.ID))

	items, err = client.Items().GetAll(ctx, "Tasks", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)

	_, err = client.Items().Get(ctx, "Tasks", first.ID)
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))
}

func TestPaginationAcrossPages(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Bulk")

	client := newClient(t, fake)
	ctx := context.Background()

	titles := []string{"a", "b", "c", "d", "e"}
	for _, title := range titles {
		_, err := client.Items().Create(ctx, "Bulk", sharepoint.FieldValues{"Title": title})
		require.NoError(t, err)
	}

	before := fake.RequestsFor("/_api/web/lists/getbytitle('Bulk')/items")

	items, err := client.Items().GetAll(ctx, "Bulk", sharepoint.NewQueryParams().WithTop(2))
	require.NoError(t, err)
	require.Len(t, items, 5)

	var got []string
	for _, item := range items {
		got = append(got, item.Title)
	}

	assert.Equal(t, titles, got)

	pages := fake.RequestsFor("/_api/web/lists/getbytitle('Bulk')/items") - before
	assert.Equal(t, 3, pages, "five items at page size two need three pages")
}

func TestAttachmentRoundTrip(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Reports")

	client := newClient(t, fake)
	ctx := context.Background()

	item, err := client.Items().Create(ctx, "Reports", sharepoint.FieldValues{"Title": "Q3"})
	require.NoError(t, err)

	// Binary content survives the round trip byte for byte.
	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF, 0x01, 0x02}

	uploaded, err := client.Attachments().Upload(ctx, "Reports", item.ID, "report.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", uploaded.FileName)

	downloaded, err := client.Attachments().Download(ctx, "Reports", item.ID, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, downloaded)

	attachments, err := client.Attachments().List(ctx, "Reports", item.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)

	require.NoError(t, client.Attachments().Delete(ctx, "Reports", item.ID, "report.pdf"))

	attachments, err = client.Attachments().List(ctx, "Reports", item.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestUserLookup(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedUser(sharepoint.SiteUser{
		ID:                12,
		Title:             "Alex Example",
		UserPrincipalName: "alex@contoso.com",
	})

	client := newClient(t, fake)
	ctx := context.Background()

	email, err := client.Users().EmailByID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "alex@contoso.com", email)

	_, err = client.Users().EmailByID(ctx, 99)
	require.Error(t, err)
	assert.True(t, sharepoint.IsNotFound(err))
}

func TestManagerWorkflow(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Tasks",
		sharepoint.FieldDef{InternalName: "Status", Title: "Status", Type: sharepoint.FieldTypeText},
	)

	client := newClient(t, fake)
	manager := spclient.NewManagerWithClient(client)
	ctx := context.Background()

	_, err := manager.AddItem(ctx, "Tasks", sharepoint.FieldValues{"Title": "Open task", "Status": "Open"})
	require.NoError(t, err)

	_, err = manager.AddItemWithAttachment(ctx, "Tasks",
		sharepoint.FieldValues{"Title": "Closed task", "Status": "Closed"},
		"notes.txt", bytes.NewReader([]byte("done")))
	require.NoError(t, err)

	open, err := manager.FilterListItems(ctx, "Tasks", `Status == "Open"`)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Open task", open[0].Title)

	closed, err := manager.MatchListItems(ctx, "Tasks", []sharepoint.FieldMatch{
		{Column: "Status", Value: "Closed"},
	})
	require.NoError(t, err)
	require.Len(t, closed, 1)

	data, err := manager.DownloadAttachment(ctx, "Tasks", closed[0].ID, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("done"), data)
}

func TestProvisioningWorkflow(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Tasks",
		sharepoint.FieldDef{InternalName: "DueDate", Title: "DueDate", Type: sharepoint.FieldTypeDateTime},
	)

	client := newClient(t, fake)
	ctx := context.Background()

	definition := []byte(`
lists:
  - title: Tasks
    fields:
      - name: DueDate
        type: DateTime
      - name: Priority
        type: Integer
  - title: Archive
`)

	result, err := client.Provision().ApplyDefinition(ctx, definition)
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive"}, result.CreatedLists)
	assert.Equal(t, []string{"Tasks/Priority"}, result.CreatedFields)

	// A second diff finds nothing left to create.
	diff, err := client.Provision().DiffDefinition(ctx, definition)
	require.NoError(t, err)
	assert.Empty(t, diff.MissingLists)
	assert.Empty(t, diff.MissingFields)
}

func TestMetadataCaching(t *testing.T) {
	fake := NewFakeSharePoint(t)
	fake.SeedList("Tasks")

	client, err := spclient.New(context.Background(), &sharepoint.Config{
		SiteURL:     fake.Server.URL,
		AccessToken: "integration-token",
		Cache: &sharepoint.CacheConfig{
			Type:   sharepoint.CacheTypeMemory,
			Memory: &sharepoint.MemoryCacheConfig{MaxSize: 100},
		},
	})
	require.NoError(t, err)

	ctx := context.Background()

	for range 3 {
		_, err := client.Lists().Get(ctx, "Tasks")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, fake.RequestsFor("/_api/web/lists/getbytitle('Tasks')"),
		"repeated metadata reads are served from cache")
}
