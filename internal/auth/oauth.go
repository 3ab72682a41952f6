package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// TokenManager manages OAuth2 access tokens.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	Token(ctx context.Context) (*Token, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// OAuth2Config holds the client_credentials settings.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// OAuth2TokenManager mints tokens with the client_credentials grant and
// keeps the current one in a TokenCache until its expiry instant passes.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      helpscout.TokenCache
	httpClient *http.Client
	logger     helpscout.Logger
	now        func() time.Time

	// serialises renewals
	mutex sync.Mutex
}

// Option configures an OAuth2TokenManager.
type Option func(*OAuth2TokenManager)

// WithTokenCache sets the cache holding the current token.
func WithTokenCache(cache helpscout.TokenCache) Option {
	return func(m *OAuth2TokenManager) {
		if cache != nil {
			m.store = cache
		}
	}
}

// WithHTTPClient sets the client used for the token endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(m *OAuth2TokenManager) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger helpscout.Logger) Option {
	return func(m *OAuth2TokenManager) {
		m.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *OAuth2TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewOAuth2TokenManager creates a new OAuth2 token manager.
func NewOAuth2TokenManager(config *OAuth2Config, opts ...Option) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: &http.Client{Timeout: constants.ShortHTTPTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// NewHelpScoutTokenManager creates a manager for the token endpoint under baseURL.
func NewHelpScoutTokenManager(baseURL, clientID, clientSecret string, opts ...Option) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     helpscout.JoinURL(baseURL, constants.TokenPath),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, opts...)
}

// GetToken returns a valid access token, renewing it if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// Token returns the cached token while it is valid. Otherwise it renews it
// once: concurrent callers that find the token expired wait for the same
// renewal instead of issuing their own.
func (m *OAuth2TokenManager) Token(ctx context.Context) (*Token, error) {
	token := m.store.Get()
	if token.ValidAt(m.now()) {
		return token, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	token = m.store.Get()
	if token.ValidAt(m.now()) {
		return token, nil
	}

	return m.renew(ctx)
}

// RefreshToken renews the token regardless of its expiry.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	_, err := m.renew(ctx)

	return err
}

// SetToken installs a token obtained elsewhere.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// renew must be called with m.mutex held.
func (m *OAuth2TokenManager) renew(ctx context.Context) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", constants.GrantTypeClientCredentials)
	data.Set("client_id", m.config.ClientID)
	data.Set("client_secret", m.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, m.fail(&helpscout.AuthError{Err: fmt.Errorf("creating token request: %w", err)})
	}

	req.Header.Set(constants.HeaderContentType, "application/x-www-form-urlencoded")
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	renewedAt := m.now()

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, m.fail(&helpscout.AuthError{Err: err})
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, m.fail(&helpscout.AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading token response: %w", err)})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, m.fail(&helpscout.AuthError{StatusCode: resp.StatusCode, Body: body})
	}

	var tokenResp tokenResponse

	err = json.Unmarshal(body, &tokenResp)
	if err != nil {
		return nil, m.fail(&helpscout.AuthError{StatusCode: resp.StatusCode, Body: body, Err: fmt.Errorf("decoding token response: %w", err)})
	}

	if tokenResp.AccessToken == "" {
		return nil, m.fail(&helpscout.AuthError{StatusCode: resp.StatusCode, Body: body, Err: helpscout.ErrEmptyAccessToken})
	}

	token := &Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		ExpiresAt:   renewedAt.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}

	m.store.Set(token)

	if m.logger != nil {
		m.logger.Info("Access token renewed", map[string]interface{}{
			"expires_at": token.ExpiresAt.Format(time.RFC3339),
		})
	}

	return token, nil
}

func (m *OAuth2TokenManager) fail(err *helpscout.AuthError) error {
	if m.logger != nil {
		m.logger.Error("Access token renewal failed", map[string]interface{}{
			"status_code": err.StatusCode,
			"error":       err.Error(),
		})
	}

	return err
}
