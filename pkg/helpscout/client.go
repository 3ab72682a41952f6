package helpscout

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Credentials identify the application that mints access tokens. They are
// immutable once handed to a client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Valid reports whether both halves of the credential pair are present.
func (c Credentials) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Parent scopes a resource path under another resource, e.g.
// conversations/123/notes.
type Parent struct {
	Type string
	ID   string
}

// PathPrefix returns "<type>/<id>/" or "" when the parent is incomplete.
func (p *Parent) PathPrefix() string {
	if p == nil || p.Type == "" || p.ID == "" {
		return ""
	}

	return p.Type + "/" + p.ID + "/"
}

// GetOptions shapes a single-resource read.
type GetOptions struct {
	// Embed lists sub-resources to inline, sent as repeated embed= parameters.
	Embed []string
	// SubObject is appended to the resource path. When the response envelope
	// embeds a key with the same name, that value is returned instead of the body.
	SubObject string
}

// ResourceOperations is the generic CRUD surface of the Mailbox API.
type ResourceOperations interface {
	Create(ctx context.Context, objectType string, data interface{}, parent *Parent) (string, error)
	Get(ctx context.Context, objectType, id string, opts *GetOptions) (json.RawMessage, error)
	List(ctx context.Context, objectType string, query url.Values, parent *Parent) ([]json.RawMessage, error)
	UpdatePut(ctx context.Context, objectType, id string, data interface{}, parent *Parent) error
	UpdatePatch(ctx context.Context, objectType, id string, data interface{}, parent *Parent) error
	Delete(ctx context.Context, objectType, id string) error
}

// ConversationOperations holds shortcuts for conversation workflows.
type ConversationOperations interface {
	AddNoteToConversation(ctx context.Context, conversationID, text string) (string, error)
}

// AuthClient exposes the authentication pipeline.
type AuthClient interface {
	GetAccessToken(ctx context.Context) (*Token, error)
	RawAPI(ctx context.Context, method, rawURL string, data interface{}) (*Response, error)
}

// Client is the complete Help Scout API client.
type Client interface {
	ResourceOperations
	ConversationOperations
	AuthClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a helpscout.Client.
//
// # Authentication
//
// ClientID and ClientSecret are required. Tokens are minted with the OAuth2
// client_credentials grant against TokenURL and cached in TokenCache until
// their expiry instant has passed.
//
// # Token cache sharing
//
// Each client gets its own in-memory token cache unless TokenCache is set.
// Hand the same cache to several clients built from one application identity
// to have them share a single token slot.
//
// # Retries
//
// Failed requests are surfaced to the caller without retry by default.
// Setting RetryMax above zero opts into retrying transient failures (5xx,
// 429 and connection errors) with backoff between RetryWaitMin and RetryWaitMax.
type Config struct {
	// ClientID: OAuth2 application id.
	ClientID string
	// ClientSecret: OAuth2 application secret used with ClientID.
	ClientSecret string

	// BaseURL: versioned API root. Defaults to https://api.helpscout.net/v2/.
	BaseURL string
	// TokenURL: OAuth2 token endpoint. Defaults to BaseURL + "oauth2/token".
	TokenURL string

	// HTTPTimeout: per-request timeout of the underlying HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. 0 disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP and auth layers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string

	// PageInterval: minimum spacing between page requests of one List call.
	// Values below the provider's 150ms floor are allowed for tests only.
	PageInterval time.Duration
	// MaxPages: optional upper bound on pages fetched by one List call. 0 means unlimited.
	MaxPages int

	// TokenCache: optional token cache, see "Token cache sharing".
	TokenCache TokenCache
	// Interceptors: optional hooks run around every resource request.
	Interceptors *InterceptorChain
}

// Credentials returns the credential pair held by the config.
func (c *Config) Credentials() Credentials {
	return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// JoinURL joins a relative resource path onto a base URL, keeping any
// query string of the path intact.
func JoinURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
