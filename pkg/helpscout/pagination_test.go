package helpscout_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPageFailed = errors.New("page failed")

// MockPageFetcher serves canned list pages keyed by page number and rejects
// overlapping requests.
type MockPageFetcher struct {
	pages      map[int]string
	errOnPage  int
	delay      time.Duration
	inFlight   atomic.Int32
	overlapped atomic.Bool

	mu       sync.Mutex
	requests []url.Values
}

func (m *MockPageFetcher) FetchPage(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if m.inFlight.Add(1) > 1 {
		m.overlapped.Store(true)
	}
	defer m.inFlight.Add(-1)

	m.mu.Lock()
	m.requests = append(m.requests, query)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil {
		return nil, fmt.Errorf("bad page parameter: %w", err)
	}

	if page == m.errOnPage {
		return nil, errPageFailed
	}

	body, ok := m.pages[page]
	if !ok {
		return []byte(`{"page":{"totalPages":0}}`), nil
	}

	return []byte(body), nil
}

func (m *MockPageFetcher) pagesRequested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	pages := make([]string, 0, len(m.requests))
	for _, query := range m.requests {
		pages = append(pages, query.Get("page"))
	}

	return pages
}

func customerPage(totalPages int, ids ...int) string {
	items := make([]map[string]int, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]int{"id": id})
	}

	body, _ := json.Marshal(map[string]interface{}{
		"page":      map[string]int{"totalPages": totalPages},
		"_embedded": map[string]interface{}{"customers": items},
	})

	return string(body)
}

func fastOptions() helpscout.PaginationOptions {
	return helpscout.PaginationOptions{Interval: 5 * time.Millisecond}
}

func idsOf(t *testing.T, items []json.RawMessage) []int {
	t.Helper()

	type item struct {
		ID int `json:"id"`
	}

	decoded, err := helpscout.DecodeAll[item](items)
	require.NoError(t, err)

	ids := make([]int, 0, len(decoded))
	for _, d := range decoded {
		ids = append(ids, d.ID)
	}

	return ids
}

func TestListAll_ConcatenatesPagesInOrder(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(3, 1, 2),
			2: customerPage(3, 3, 4),
			3: customerPage(3, 5),
		},
	}

	items, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, fastOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, idsOf(t, items))
	assert.Equal(t, []string{"1", "2", "3"}, fetcher.pagesRequested())
}

func TestListAll_NeverOverlapsRequests(t *testing.T) {
	t.Parallel()

	// Each request outlasts several ticks.
	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(3, 1),
			2: customerPage(3, 2),
			3: customerPage(3, 3),
		},
		delay: 20 * time.Millisecond,
	}

	items, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, helpscout.PaginationOptions{
		Interval: 2 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.False(t, fetcher.overlapped.Load())
	assert.Equal(t, []int{1, 2, 3}, idsOf(t, items))
	assert.Equal(t, []string{"1", "2", "3"}, fetcher.pagesRequested())
}

func TestListAll_SpacesRequestsByInterval(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		times []time.Time
	)

	fetcher := helpscout.PageFetcherFunc(func(ctx context.Context, path string, query url.Values) ([]byte, error) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()

		page, _ := strconv.Atoi(query.Get("page"))

		return []byte(customerPage(3, page)), nil
	})

	interval := 30 * time.Millisecond

	_, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, helpscout.PaginationOptions{
		Interval: interval,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, times, 3)

	for i := 1; i < len(times); i++ {
		// Ticker jitter allowance.
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), interval-5*time.Millisecond)
	}
}

func TestListAll_MissingEmbeddedKeyReturnsAccumulated(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(3, 1, 2),
			2: `{"page":{"totalPages":3},"_embedded":{}}`,
			3: customerPage(3, 9),
		},
	}

	items, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, fastOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, idsOf(t, items))
	assert.Equal(t, []string{"1", "2"}, fetcher.pagesRequested())
}

func TestListAll_EmptyFirstPage(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: `{"page":{"size":50,"totalElements":0,"totalPages":0,"number":1}}`,
		},
	}

	items, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, fastOptions())
	require.NoError(t, err)

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListAll_ErrorDiscardsAccumulated(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(3, 1, 2),
			2: customerPage(3, 3, 4),
		},
		errOnPage: 2,
	}

	items, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, fastOptions())
	require.Error(t, err)

	assert.Nil(t, items)
	require.ErrorIs(t, err, errPageFailed)
	assert.Equal(t, []string{"1", "2"}, fetcher.pagesRequested())
}

func TestListAll_PassesQueryParameters(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(1, 1),
		},
	}

	query := url.Values{}
	query.Set("mailbox", "42")
	query.Set("status", "active")

	_, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", query, fastOptions())
	require.NoError(t, err)

	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, "1", fetcher.requests[0].Get("page"))
	assert.Equal(t, "42", fetcher.requests[0].Get("mailbox"))
	assert.Equal(t, "active", fetcher.requests[0].Get("status"))
	assert.Empty(t, query.Get("page"))
}

func TestListAll_ContextCancellation(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(1000, 1),
		},
		delay: 50 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	items, err := helpscout.ListAll(ctx, fetcher, "customers", "customers", nil, fastOptions())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, items)
}

func TestListAll_MaxPages(t *testing.T) {
	t.Parallel()

	fetcher := &MockPageFetcher{
		pages: map[int]string{
			1: customerPage(5, 1),
			2: customerPage(5, 2),
		},
	}

	opts := fastOptions()
	opts.MaxPages = 2

	_, err := helpscout.ListAll(context.Background(), fetcher, "customers", "customers", nil, opts)
	require.ErrorIs(t, err, helpscout.ErrMaxPagesExceeded)
	assert.Equal(t, []string{"1", "2"}, fetcher.pagesRequested())
}

func TestListAll_RequiresObjectType(t *testing.T) {
	t.Parallel()

	_, err := helpscout.ListAll(context.Background(), &MockPageFetcher{}, "", "customers", nil, fastOptions())
	require.ErrorIs(t, err, helpscout.ErrObjectTypeRequired)
}

func TestDefaultPaginationOptions(t *testing.T) {
	t.Parallel()

	opts := helpscout.DefaultPaginationOptions()
	assert.Equal(t, 200*time.Millisecond, opts.Interval)
	assert.Equal(t, 0, opts.MaxPages)
}
