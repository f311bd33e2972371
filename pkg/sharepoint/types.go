package sharepoint

import (
	"encoding/json"
	"time"
)

// List represents a SharePoint list.
type List struct {
	ID                string    `json:"Id"                yaml:"id"`
	Title             string    `json:"Title"             yaml:"title"`
	Description       string    `json:"Description"       yaml:"description"`
	BaseTemplate      int       `json:"BaseTemplate"      yaml:"base_template"`
	ItemCount         int       `json:"ItemCount"         yaml:"item_count"`
	Hidden            bool      `json:"Hidden"            yaml:"hidden"`
	AllowContentTypes bool      `json:"AllowContentTypes" yaml:"allow_content_types"`
	Created           time.Time `json:"Created"           yaml:"created"`
	LastItemModified  time.Time `json:"LastItemModifiedDate" yaml:"last_item_modified"`
}

// ListTemplateGeneric is the base template for a custom (generic) list.
const ListTemplateGeneric = 100

// ListCreateRequest is the payload for creating a list.
type ListCreateRequest struct {
	Title             string `json:"Title"`
	Description       string `json:"Description,omitempty"`
	BaseTemplate      int    `json:"BaseTemplate"`
	AllowContentTypes bool   `json:"AllowContentTypes"`
}

// Item represents a single list item. Fields holds the item's column values
// keyed by internal field name; system columns (Id, Created, Modified, ...)
// are surfaced both as struct fields and inside Fields.
type Item struct {
	ID       int         `json:"Id"`
	Title    string      `json:"Title"`
	Created  time.Time   `json:"Created"`
	Modified time.Time   `json:"Modified"`
	Fields   FieldValues `json:"-"`
}

// UnmarshalJSON decodes an item response, keeping every column in Fields
// while lifting the common system columns into struct fields.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	i.Fields = make(FieldValues, len(raw))

	for key, value := range raw {
		switch key {
		case "Id", "ID":
			_ = json.Unmarshal(value, &i.ID)
		case "Title":
			_ = json.Unmarshal(value, &i.Title)
		case "Created":
			_ = json.Unmarshal(value, &i.Created)
		case "Modified":
			_ = json.Unmarshal(value, &i.Modified)
		}

		var field any
		if err := json.Unmarshal(value, &field); err == nil {
			i.Fields[key] = field
		}
	}

	return nil
}

// Attachment represents a file attached to a list item.
type Attachment struct {
	FileName          string `json:"FileName"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
}

// Folder represents a SharePoint folder.
type Folder struct {
	Name              string    `json:"Name"`
	ServerRelativeURL string    `json:"ServerRelativeUrl"`
	ItemCount         int       `json:"ItemCount"`
	Exists            bool      `json:"Exists"`
	TimeCreated       time.Time `json:"TimeCreated"`
	TimeLastModified  time.Time `json:"TimeLastModified"`
}

// File represents a file stored in a SharePoint folder.
type File struct {
	Name              string    `json:"Name"`
	ServerRelativeURL string    `json:"ServerRelativeUrl"`
	Length            int64     `json:"Length,string"`
	TimeCreated       time.Time `json:"TimeCreated"`
	TimeLastModified  time.Time `json:"TimeLastModified"`
}

// SiteUser represents a user known to the site collection.
type SiteUser struct {
	ID                int    `json:"Id"`
	Title             string `json:"Title"`
	Email             string `json:"Email"`
	LoginName         string `json:"LoginName"`
	UserPrincipalName string `json:"UserPrincipalName"`
	IsSiteAdmin       bool   `json:"IsSiteAdmin"`
}

// Web represents the site addressed by the configured site URL.
type Web struct {
	ID                string    `json:"Id"`
	Title             string    `json:"Title"`
	Description       string    `json:"Description"`
	ServerRelativeURL string    `json:"ServerRelativeUrl"`
	WebTemplate       string    `json:"WebTemplate"`
	Created           time.Time `json:"Created"`
}

// ListResponse represents one page of an OData collection response.
// NextLink carries the server continuation for the following page; empty
// means the collection is exhausted.
type ListResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"odata.nextLink"`
}
