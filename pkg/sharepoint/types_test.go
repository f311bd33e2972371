package sharepoint_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_UnmarshalJSON(t *testing.T) {
	var item sharepoint.Item

	err := json.Unmarshal([]byte(`{
		"Id": 42,
		"Title": "Ship release",
		"Created": "2026-08-01T09:30:00Z",
		"Modified": "2026-08-02T10:00:00Z",
		"Status": "Open",
		"Priority": 3,
		"AssignedToId": 12
	}`), &item)
	require.NoError(t, err)

	assert.Equal(t, 42, item.ID)
	assert.Equal(t, "Ship release", item.Title)
	assert.Equal(t, 2026, item.Created.Year())
	assert.False(t, item.Modified.IsZero())

	// Every column, system ones included, lands in Fields.
	assert.Equal(t, "Open", item.Fields["Status"])
	assert.InEpsilon(t, float64(3), item.Fields["Priority"], 0.001)
	assert.Equal(t, "Ship release", item.Fields["Title"])
	assert.InEpsilon(t, float64(42), item.Fields["Id"], 0.001)
}

func TestItem_UnmarshalJSON_UppercaseID(t *testing.T) {
	var item sharepoint.Item

	err := json.Unmarshal([]byte(`{"ID": 7, "Title": "x"}`), &item)
	require.NoError(t, err)
	assert.Equal(t, 7, item.ID)
}

func TestFile_LengthDecodedFromString(t *testing.T) {
	var file sharepoint.File

	// SharePoint serializes file sizes as Edm.Int64 strings.
	err := json.Unmarshal([]byte(`{"Name": "report.pdf", "Length": "2048"}`), &file)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), file.Length)
}

func TestListResponse_NextLink(t *testing.T) {
	var page sharepoint.ListResponse[sharepoint.Item]

	err := json.Unmarshal([]byte(`{
		"value": [{"Id": 1, "Title": "a"}, {"Id": 2, "Title": "b"}],
		"odata.nextLink": "https://contoso.sharepoint.com/_api/items?$skiptoken=Paged%3DTRUE"
	}`), &page)
	require.NoError(t, err)

	require.Len(t, page.Value, 2)
	assert.Equal(t, "b", page.Value[1].Title)
	assert.NotEmpty(t, page.NextLink)
}
