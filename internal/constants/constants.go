package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoints.
const (
	// DefaultBaseURL is the versioned root of the Help Scout Mailbox API.
	DefaultBaseURL = "https://api.helpscout.net/v2/"

	// TokenPath is the token endpoint relative to the base URL.
	TokenPath = "oauth2/token"

	// GrantTypeClientCredentials is the only grant the client mints tokens with.
	GrantTypeClientCredentials = "client_credentials"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "helpscout-go/1.0"
)

// HTTP header names.
const (
	// HeaderResourceID carries the identifier of a newly created resource.
	HeaderResourceID = "Resource-Id"

	// HeaderAuthorization is the bearer token header.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the request payload content type header.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the accepted response content type header.
	HeaderAccept = "Accept"

	// HeaderUserAgent is the user agent header.
	HeaderUserAgent = "User-Agent"

	// ContentTypeJSON is the JSON media type.
	ContentTypeJSON = "application/json"

	// TokenTypeBearer is the token type used in the Authorization header.
	TokenTypeBearer = "Bearer"

	// HeaderRateLimitRemaining is the number of requests left in the current minute.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining-Minute"

	// HeaderRateLimitLimit is the per-minute request allowance.
	HeaderRateLimitLimit = "X-RateLimit-Limit-Minute"

	// HeaderRateLimitRetryAfter is the number of seconds to wait after a 429.
	HeaderRateLimitRetryAfter = "X-RateLimit-Retry-After"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token renewal.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are opt-in; a zero RetryMax sends each request once.
const (
	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Pagination and rate limiting.
const (
	// DefaultPageInterval is the minimum spacing between page requests of one
	// list operation. The provider's tightest safe cadence is 150ms.
	DefaultPageInterval = 200 * time.Millisecond

	// ProviderMinimumInterval is the documented tightest safe request cadence.
	ProviderMinimumInterval = 150 * time.Millisecond

	// RequestsPerMinute is the provider's per-account rate limit.
	RequestsPerMinute = 400

	// FirstPage is the first page number of a list.
	FirstPage = 1
)

// HTTP status codes commonly used.
const (
	// HTTPStatusBadRequest is the first status code treated as a failure.
	HTTPStatusBadRequest = 400

	// HTTPStatusUnauthorized is returned for missing or expired tokens.
	HTTPStatusUnauthorized = 401

	// HTTPStatusNotFound is returned for unknown resources.
	HTTPStatusNotFound = 404

	// HTTPStatusTooManyRequests is returned when the rate limit is exceeded.
	HTTPStatusTooManyRequests = 429
)

// Envelope keys of list and detail responses.
const (
	// EmbeddedKey holds inline resources in a response envelope.
	EmbeddedKey = "_embedded"

	// PageKey holds pagination metadata in a list envelope.
	PageKey = "page"
)

// Well-known object types.
const (
	// ObjectConversations is the conversations collection.
	ObjectConversations = "conversations"

	// ObjectNotes is the notes collection nested under a conversation.
	ObjectNotes = "notes"
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON and YAML indentation.
	JSONIndentSize = 2

	// StringTruncationLength is the default length for truncating table cells.
	StringTruncationLength = 60

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

// Confirmation constants.
const (
	// ConfirmationYes for positive confirmations.
	ConfirmationYes = "yes"

	// ConfirmationY short form for positive confirmations.
	ConfirmationY = "y"
)

// Validation and limits.
const (
	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2

	// FileArgumentPrefix marks a flag value that names a file to read.
	FileArgumentPrefix = "@"
)
