// Package sharepoint provides types, interfaces, and helpers for working
// with the SharePoint REST API.
//
// # Overview
//
// The sharepoint package defines the domain types (List, Item, Attachment,
// Folder, File, SiteUser) and the interfaces for resource-oriented clients
// (ListsClient, ItemsClient, AttachmentsClient, ...). A concrete
// implementation of these clients is provided by the spclient package, which
// wires configuration, transport, and authentication. Most consumers should
// import spclient to construct a client and then interact with the resource
// client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
//	  "github.com/fivetwenty-io/sharepoint/pkg/spclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := spclient.New(ctx, &sharepoint.Config{
//	    SiteURL:      "https://contoso.sharepoint.com/sites/test",
//	    ClientID:     "app-id",
//	    ClientSecret: "app-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of items in a list
//	  items, err := cli.Items().List(ctx, "Tasks", sharepoint.NewQueryParams().WithTop(100))
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// # Queries and pagination
//
// Use QueryParams to express OData list options ($filter, $select, $orderby,
// $top). The package also provides helpers for iterating or collecting
// paginated results, following odata.nextLink continuations:
//
//	it := sharepoint.NewPaginationIterator(ctx, cli.Items(), "/_api/web/lists/getbytitle('Tasks')/items", nil)
//	for it.HasNext() {
//	  item, err := it.Next()
//	  if err != nil { break }
//	  _ = item
//	}
//
// # Errors
//
// API errors are represented by APIError, parsed from SharePoint's OData
// error envelope. Helpers such as IsNotFound, IsUnauthorized, IsValidation,
// and IsThrottled make it easy to branch on common cases. Construction
// failures surface as static sentinel errors (ErrSiteURLRequired, ...).
//
// # Caching
//
// List and field-schema metadata can be cached via the Cache interface with
// in-memory or NATS KV backends; item data is never cached.
package sharepoint
