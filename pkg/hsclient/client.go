// Package hsclient provides the main entry point for creating Help Scout API clients
package hsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/helpscout/internal/auth"
	"github.com/fivetwenty-io/helpscout/internal/client"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// New creates a new Help Scout API client. Credentials are validated but no
// token is requested until the first call.
func New(ctx context.Context, config *helpscout.Config) (helpscout.Client, error) {
	if config == nil {
		return nil, helpscout.ErrConfigRequired
	}

	normalized := *config
	normalized.ClientID = strings.TrimSpace(config.ClientID)
	normalized.ClientSecret = strings.TrimSpace(config.ClientSecret)

	if normalized.BaseURL != "" && !strings.HasPrefix(normalized.BaseURL, "http://") && !strings.HasPrefix(normalized.BaseURL, "https://") {
		normalized.BaseURL = "https://" + normalized.BaseURL
	}

	hsClient, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return hsClient, nil
}

// NewWithCredentials creates a client for the public API with default settings.
func NewWithCredentials(ctx context.Context, clientID, clientSecret string) (helpscout.Client, error) {
	return New(ctx, &helpscout.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewTokenStore returns an empty in-memory token cache that can be shared
// between clients through Config.TokenCache.
func NewTokenStore() helpscout.TokenCache {
	return auth.NewTokenStore()
}
