package helpscout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/constants"
)

// DefaultPageInterval is the minimum spacing between page requests of one list.
const DefaultPageInterval = constants.DefaultPageInterval

// PageFetcher performs one authenticated GET of a list page and returns the raw body.
type PageFetcher interface {
	FetchPage(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, path string, query url.Values) ([]byte, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return f(ctx, path, query)
}

// PageMetadata is the page object of a list envelope.
type PageMetadata struct {
	Size          int `json:"size"          yaml:"size"`
	TotalElements int `json:"totalElements" yaml:"totalElements"`
	TotalPages    int `json:"totalPages"    yaml:"totalPages"`
	Number        int `json:"number"        yaml:"number"`
}

// ListEnvelope is the body of a list response.
type ListEnvelope struct {
	Page     PageMetadata               `json:"page"`
	Embedded map[string]json.RawMessage `json:"_embedded"`
}

// PaginationOptions tunes a ListAll call.
type PaginationOptions struct {
	// Interval between ticks of the page loop. Defaults to DefaultPageInterval.
	Interval time.Duration
	// MaxPages stops the walk with ErrMaxPagesExceeded once exceeded. 0 means unlimited.
	MaxPages int
}

// DefaultPaginationOptions returns the options used when none are given.
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		Interval: DefaultPageInterval,
	}
}

type pageResult struct {
	totalPages int
	items      []json.RawMessage
	found      bool
	err        error
}

// ListAll walks every page of a list endpoint and returns the items embedded
// under objectType, in page order.
//
// Page requests are driven by a ticker and never overlap: a tick that arrives
// while a request is outstanding is skipped. The walk ends when the page
// number passes the last reported totalPages, or early when a page carries
// no items under objectType; in both cases the items collected so far are
// returned. A failed page request discards everything collected and returns
// the error. Cancelling ctx stops the walk with ctx.Err().
func ListAll(ctx context.Context, fetcher PageFetcher, objectType, path string, query url.Values, opts PaginationOptions) ([]json.RawMessage, error) {
	if objectType == "" {
		return nil, ErrObjectTypeRequired
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPageInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		pageNumber  = constants.FirstPage
		totalPages  = 1
		inFlight    = false
		accumulated = make([]json.RawMessage, 0)
		results     = make(chan pageResult, 1)
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case result := <-results:
			inFlight = false

			if result.err != nil {
				return nil, fmt.Errorf("listing %s page %d: %w", objectType, pageNumber, result.err)
			}

			pageNumber++
			totalPages = result.totalPages

			if !result.found {
				return accumulated, nil
			}

			accumulated = append(accumulated, result.items...)

		case <-ticker.C:
			if pageNumber > totalPages {
				return accumulated, nil
			}

			if inFlight {
				continue
			}

			if opts.MaxPages > 0 && pageNumber > opts.MaxPages {
				return nil, fmt.Errorf("%w: %d", ErrMaxPagesExceeded, opts.MaxPages)
			}

			inFlight = true

			go func(page int) {
				results <- fetchPage(ctx, fetcher, objectType, path, query, page)
			}(pageNumber)
		}
	}
}

func fetchPage(ctx context.Context, fetcher PageFetcher, objectType, path string, query url.Values, page int) pageResult {
	pageQuery := url.Values{}
	for key, values := range query {
		pageQuery[key] = append([]string(nil), values...)
	}

	pageQuery.Set("page", strconv.Itoa(page))

	body, err := fetcher.FetchPage(ctx, path, pageQuery)
	if err != nil {
		return pageResult{err: err}
	}

	var envelope ListEnvelope

	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return pageResult{err: fmt.Errorf("decoding list envelope: %w", err)}
	}

	raw, ok := envelope.Embedded[objectType]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return pageResult{totalPages: envelope.Page.TotalPages}
	}

	var items []json.RawMessage

	err = json.Unmarshal(raw, &items)
	if err != nil {
		return pageResult{err: fmt.Errorf("decoding embedded %s: %w", objectType, err)}
	}

	return pageResult{
		totalPages: envelope.Page.TotalPages,
		items:      items,
		found:      true,
	}
}

// DecodeAll unmarshals every raw item into T.
func DecodeAll[T any](items []json.RawMessage) ([]T, error) {
	decoded := make([]T, 0, len(items))

	for i, item := range items {
		var value T

		err := json.Unmarshal(item, &value)
		if err != nil {
			return nil, fmt.Errorf("decoding item %d: %w", i, err)
		}

		decoded = append(decoded, value)
	}

	return decoded, nil
}

// ListAs lists objectType through client and decodes the items into T.
func ListAs[T any](ctx context.Context, client ResourceOperations, objectType string, query url.Values, parent *Parent) ([]T, error) {
	items, err := client.List(ctx, objectType, query, parent)
	if err != nil {
		return nil, err
	}

	return DecodeAll[T](items)
}

// GetAs reads one resource through client and decodes it into T.
func GetAs[T any](ctx context.Context, client ResourceOperations, objectType, id string, opts *GetOptions) (*T, error) {
	raw, err := client.Get(ctx, objectType, id, opts)
	if err != nil {
		return nil, err
	}

	var value T

	err = json.Unmarshal(raw, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", objectType, id, err)
	}

	return &value, nil
}
