package sharepoint

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/sharepoint/internal/constants"
)

// PaginationClient is implemented by resource clients that can fetch one page
// of an OData collection at a path.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions controls page fetching behavior.
type PaginationOptions struct {
	// PageSize is the $top hint applied to each request.
	PageSize int
	// MaxPages limits the number of pages fetched; 0 means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns sensible defaults.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.DefaultPageSize,
		MaxPages: 0,
	}
}

// PaginationIterator lazily iterates over all items of a collection,
// following odata.nextLink continuations. Creating a new iterator restarts
// the sequence from the first page.
type PaginationIterator[T any] struct {
	ctx      context.Context
	client   PaginationClient[T]
	path     string
	params   *QueryParams
	buffer   []T
	position int
	nextLink string
	started  bool
	done     bool
}

// NewPaginationIterator creates an iterator over the collection at path.
func NewPaginationIterator[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams) *PaginationIterator[T] {
	if params == nil {
		params = NewQueryParams()
	}

	return &PaginationIterator[T]{
		ctx:    ctx,
		client: client,
		path:   path,
		params: params,
	}
}

// HasNext reports whether another item is available without consuming it.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.position < len(it.buffer) {
		return true
	}

	if it.done {
		return false
	}

	err := it.fetchNextPage()
	if err != nil {
		// Surface the error on the subsequent Next call.
		return true
	}

	return it.position < len(it.buffer) || !it.done
}

// Next returns the next item in the collection.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	for it.position >= len(it.buffer) {
		if it.done {
			return zero, ErrNoMoreItems
		}

		err := it.fetchNextPage()
		if err != nil {
			return zero, err
		}
	}

	item := it.buffer[it.position]
	it.position++

	return item, nil
}

// All collects every remaining item.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return all, nil
			}

			return nil, err
		}

		all = append(all, item)
	}
}

// ForEach applies fn to every remaining item, stopping on the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return nil
			}

			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}
}

func (it *PaginationIterator[T]) fetchNextPage() error {
	params := *it.params

	if it.started {
		if it.nextLink == "" {
			it.done = true
			it.buffer = nil
			it.position = 0

			return nil
		}

		params.SkipToken = skipTokenFromLink(it.nextLink)
	}

	page, err := it.client.ListWithPath(it.ctx, it.path, &params)
	if err != nil {
		return err
	}

	it.started = true
	it.buffer = page.Value
	it.position = 0
	it.nextLink = page.NextLink

	if it.nextLink == "" {
		it.done = true
	}

	return nil
}

// FetchAllPages fetches every page of a collection up front.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	if params == nil {
		params = NewQueryParams()
	}

	if options.PageSize > 0 && params.Top == 0 {
		params.Top = options.PageSize
	}

	// SharePoint silently caps $top for list items; clamp so MaxPages
	// math stays aligned with what the server actually returns.
	if params.Top > constants.MaxPageSize {
		params.Top = constants.MaxPageSize
	}

	var (
		all      []T
		nextLink string
		pages    int
	)

	for {
		pageParams := *params
		if pages > 0 {
			pageParams.SkipToken = skipTokenFromLink(nextLink)
		}

		page, err := client.ListWithPath(ctx, path, &pageParams)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Value...)
		pages++

		nextLink = page.NextLink
		if nextLink == "" {
			break
		}

		if options.MaxPages > 0 && pages >= options.MaxPages {
			break
		}
	}

	return all, nil
}

// PageResult is one page delivered by StreamPages.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages fetches pages in the background and delivers them on a channel.
// The channel is closed after the last page or the first error.
func StreamPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	results := make(chan PageResult[T], constants.SmallBufferSize)

	go func() {
		defer close(results)

		if params == nil {
			params = NewQueryParams()
		}

		if options.PageSize > 0 && params.Top == 0 {
			params.Top = options.PageSize
		}

		if params.Top > constants.MaxPageSize {
			params.Top = constants.MaxPageSize
		}

		var (
			nextLink string
			pages    int
		)

		for {
			pageParams := *params
			if pages > 0 {
				pageParams.SkipToken = skipTokenFromLink(nextLink)
			}

			page, err := client.ListWithPath(ctx, path, &pageParams)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: page.Value}:
			case <-ctx.Done():
				return
			}

			pages++

			nextLink = page.NextLink
			if nextLink == "" {
				return
			}

			if options.MaxPages > 0 && pages >= options.MaxPages {
				return
			}
		}
	}()

	return results
}

// skipTokenFromLink extracts the $skiptoken from an odata.nextLink value.
// The link may be absolute, server-relative, or a bare query string.
func skipTokenFromLink(link string) string {
	if link == "" {
		return ""
	}

	raw := link
	if idx := strings.Index(link, "?"); idx >= 0 {
		raw = link[idx+1:]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}

	return values.Get("$skiptoken")
}
