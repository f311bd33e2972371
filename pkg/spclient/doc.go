// Package spclient provides the primary entry point for constructing a
// SharePoint REST API client that implements the sharepoint.Client interface.
//
// It layers configuration, HTTP transport, authentication, and ACS realm
// discovery on top of the resource interfaces and types defined in the
// sharepoint package. Most applications should import spclient to build a
// client, then use the returned sharepoint.Client to access resource-specific
// clients, for example Lists(), Items(), Attachments(), etc.
//
// Quick start
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
//
//	  // With an access token you already have:
//	  cli, err := spclient.New(ctx, &sharepoint.Config{
//	    SiteURL:     "https://contoso.sharepoint.com/sites/team",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with app-only client credentials. When no realm or token URL is
//	  // set, spclient discovers the tenant realm from the site's 401
//	  // challenge on the first request.
//	  cli, err = spclient.New(ctx, &sharepoint.Config{
//	    SiteURL:      "https://contoso.sharepoint.com/sites/team",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the sharepoint.Client interface
//	  items, err := cli.Items().GetAll(ctx, "Tasks", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// Construction never talks to the network; credentials are validated by the
// first remote call.
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated
// by the environment variable SHAREPOINT_DEV_MODE to avoid accidental
// insecure usage in production environments, and applies to realm discovery.
//
// # Helpers
//
// The package also provides convenience constructors NewWithSite,
// NewWithToken, NewWithClientCredentials, and NewWithPassword that wrap New
// with the appropriate configuration, a viper-based LoadConfig for YAML plus
// SHAREPOINT_* environment configuration, and SharePointManager, a thin
// facade over the resource clients for the common list workflows.
package spclient
