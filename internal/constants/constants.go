package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as realm discovery.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits,
	// typically after SharePoint throttling responses.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Token handling.
const (
	// TokenExpiryBuffer is subtracted from token lifetimes so a token is
	// refreshed before it actually expires.
	TokenExpiryBuffer = 30 * time.Second
)

// Pagination limits.
const (
	// DefaultPageSize is the default number of items requested per page.
	DefaultPageSize = 100

	// MaxPageSize is the largest $top value SharePoint honors for list items.
	MaxPageSize = 5000
)

// Cache sizing.
const (
	// DefaultCacheSize is the default maximum number of cache entries.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached list metadata.
	DefaultCacheTTL = 5 * time.Minute
)

// Buffer sizes.
const (
	// SmallBufferSize is the number of pages buffered ahead when streaming.
	SmallBufferSize = 10
)
