package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/helpscout/internal/auth"
	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/fivetwenty-io/helpscout/internal/http"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// Client implements the helpscout.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       helpscout.Logger
	pagination   helpscout.PaginationOptions
}

var _ helpscout.Client = (*Client)(nil)

// normalizeBaseURL validates baseURL and gives it a trailing slash.
func normalizeBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return constants.DefaultBaseURL, nil
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", helpscout.ErrInvalidBaseURL, baseURL)
	}

	return strings.TrimSuffix(baseURL, "/") + "/", nil
}

// createTokenManager creates the client_credentials token manager for config.
func createTokenManager(config *helpscout.Config, baseURL string) auth.TokenManager {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = helpscout.JoinURL(baseURL, constants.TokenPath)
	}

	opts := []auth.Option{auth.WithTokenCache(config.TokenCache)}

	if config.Logger != nil {
		opts = append(opts, auth.WithLogger(config.Logger))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, auth.WithHTTPClient(newTokenHTTPClient(config.HTTPTimeout)))
	}

	return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
	}, opts...)
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *helpscout.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Help Scout API client. It does not contact the API.
func New(ctx context.Context, config *helpscout.Config) (*Client, error) {
	if config == nil {
		return nil, helpscout.ErrConfigRequired
	}

	if !config.Credentials().Valid() {
		return nil, helpscout.ErrCredentialsRequired
	}

	baseURL, err := normalizeBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, baseURL, createTokenManager(config, baseURL)), nil
}

// NewWithTokenManager creates a client around an existing token manager.
// baseURL must already be normalized.
func NewWithTokenManager(config *helpscout.Config, baseURL string, tokenManager auth.TokenManager) *Client {
	httpClient := http.NewClient(baseURL, tokenManager, createHTTPClientOptions(config)...)

	pagination := helpscout.DefaultPaginationOptions()
	if config.PageInterval > 0 {
		pagination.Interval = config.PageInterval
	}

	pagination.MaxPages = config.MaxPages

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       config.Logger,
		pagination:   pagination,
	}
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// HTTPClient returns the underlying request executor.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Create implements helpscout.ResourceOperations.Create.
func (c *Client) Create(ctx context.Context, objectType string, data interface{}, parent *helpscout.Parent) (string, error) {
	if objectType == "" {
		return "", helpscout.ErrObjectTypeRequired
	}

	resp, err := c.httpClient.Post(ctx, parent.PathPrefix()+objectType, data)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", objectType, err)
	}

	return resp.Headers.Get(constants.HeaderResourceID), nil
}

// Get implements helpscout.ResourceOperations.Get.
func (c *Client) Get(ctx context.Context, objectType, id string, opts *helpscout.GetOptions) (json.RawMessage, error) {
	if objectType == "" {
		return nil, helpscout.ErrObjectTypeRequired
	}

	if id == "" {
		return nil, helpscout.ErrIDRequired
	}

	if opts == nil {
		opts = &helpscout.GetOptions{}
	}

	path := objectType + "/" + id
	if opts.SubObject != "" {
		path += "/" + opts.SubObject
	}

	var query url.Values
	if len(opts.Embed) > 0 {
		query = url.Values{"embed": opts.Embed}
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", objectType, id, err)
	}

	if opts.SubObject != "" {
		if embedded, ok := embeddedValue(resp.Body, opts.SubObject); ok {
			return embedded, nil
		}
	}

	return json.RawMessage(resp.Body), nil
}

// embeddedValue returns _embedded[key] of a JSON object body when present.
func embeddedValue(body []byte, key string) (json.RawMessage, bool) {
	var envelope struct {
		Embedded map[string]json.RawMessage `json:"_embedded"`
	}

	if json.Unmarshal(body, &envelope) != nil {
		return nil, false
	}

	value, ok := envelope.Embedded[key]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, false
	}

	return value, true
}

// List implements helpscout.ResourceOperations.List.
func (c *Client) List(ctx context.Context, objectType string, query url.Values, parent *helpscout.Parent) ([]json.RawMessage, error) {
	return helpscout.ListAll(ctx, c.pageFetcher(), objectType, parent.PathPrefix()+objectType, query, c.pagination)
}

// UpdatePut implements helpscout.ResourceOperations.UpdatePut.
func (c *Client) UpdatePut(ctx context.Context, objectType, id string, data interface{}, parent *helpscout.Parent) error {
	if objectType == "" {
		return helpscout.ErrObjectTypeRequired
	}

	// An empty id replaces the collection-level resource itself.
	path := parent.PathPrefix() + objectType
	if id != "" {
		path += "/" + id
	}

	_, err := c.httpClient.Put(ctx, path, data)
	if err != nil {
		return fmt.Errorf("replacing %s %s: %w", objectType, id, err)
	}

	return nil
}

// UpdatePatch implements helpscout.ResourceOperations.UpdatePatch.
func (c *Client) UpdatePatch(ctx context.Context, objectType, id string, data interface{}, parent *helpscout.Parent) error {
	if objectType == "" {
		return helpscout.ErrObjectTypeRequired
	}

	if id == "" {
		return helpscout.ErrIDRequired
	}

	_, err := c.httpClient.Patch(ctx, parent.PathPrefix()+objectType+"/"+id, data)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", objectType, id, err)
	}

	return nil
}

// Delete implements helpscout.ResourceOperations.Delete.
func (c *Client) Delete(ctx context.Context, objectType, id string) error {
	if objectType == "" {
		return helpscout.ErrObjectTypeRequired
	}

	if id == "" {
		return helpscout.ErrIDRequired
	}

	_, err := c.httpClient.Delete(ctx, objectType+"/"+id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", objectType, id, err)
	}

	return nil
}

// AddNoteToConversation implements helpscout.ConversationOperations.AddNoteToConversation.
func (c *Client) AddNoteToConversation(ctx context.Context, conversationID, text string) (string, error) {
	if conversationID == "" {
		return "", helpscout.ErrIDRequired
	}

	return c.Create(ctx, constants.ObjectNotes, map[string]string{"text": text}, &helpscout.Parent{
		Type: constants.ObjectConversations,
		ID:   conversationID,
	})
}

// GetAccessToken implements helpscout.AuthClient.GetAccessToken.
func (c *Client) GetAccessToken(ctx context.Context) (*helpscout.Token, error) {
	if c.tokenManager == nil {
		return nil, helpscout.ErrNoTokenManager
	}

	return c.tokenManager.Token(ctx)
}

// RawAPI implements helpscout.AuthClient.RawAPI. rawURL may be absolute or
// relative to the base URL.
func (c *Client) RawAPI(ctx context.Context, method, rawURL string, data interface{}) (*helpscout.Response, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: strings.ToUpper(method),
		Path:   rawURL,
		Body:   data,
	})
	if err != nil {
		return nil, err
	}

	return &helpscout.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}
