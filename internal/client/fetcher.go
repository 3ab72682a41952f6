package client

import (
	"context"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// pageFetcher serves list pages through the authenticated executor.
type pageFetcher struct {
	client *Client
}

func (f pageFetcher) FetchPage(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := f.client.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) pageFetcher() helpscout.PageFetcher {
	return pageFetcher{client: c}
}

func newTokenHTTPClient(timeout time.Duration) *nethttp.Client {
	return &nethttp.Client{Timeout: timeout}
}
