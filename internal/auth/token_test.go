package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/auth"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidAt(t *testing.T) {
	t.Parallel()

	instant := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token *auth.Token
		want  bool
	}{
		{name: "nil", token: nil, want: false},
		{name: "zero value", token: &auth.Token{}, want: false},
		{name: "no access token", token: &auth.Token{ExpiresAt: instant.Add(time.Hour)}, want: false},
		{name: "expiry in the future", token: &auth.Token{AccessToken: "abc", ExpiresAt: instant.Add(time.Nanosecond)}, want: true},
		{name: "expiry equal to now", token: &auth.Token{AccessToken: "abc", ExpiresAt: instant}, want: false},
		{name: "expiry in the past", token: &auth.Token{AccessToken: "abc", ExpiresAt: instant.Add(-time.Second)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.token.ValidAt(instant))
		})
	}
}

func TestTokenStoreStartsExpired(t *testing.T) {
	t.Parallel()

	var cache helpscout.TokenCache = auth.NewTokenStore()

	assert.Nil(t, cache.Get())
	assert.False(t, cache.Get().Valid())
}

func TestTokenStoreReplacesWholesale(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	expiresAt := time.Now().Add(2 * time.Hour)

	store.Set(&auth.Token{AccessToken: "first", TokenType: "bearer", ExpiresAt: expiresAt})
	store.Set(&auth.Token{AccessToken: "second"})

	current := store.Get()
	require.NotNil(t, current)
	assert.Equal(t, "second", current.AccessToken)
	assert.Empty(t, current.TokenType)
	assert.True(t, current.ExpiresAt.IsZero())
	assert.False(t, current.Valid())

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestTokenStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	values := []string{"token-1", "token-2", "token-3"}

	var wg sync.WaitGroup

	for _, value := range values {
		wg.Add(2)

		go func() {
			defer wg.Done()

			for range 100 {
				store.Set(&auth.Token{AccessToken: value})
			}
		}()

		go func() {
			defer wg.Done()

			for range 100 {
				if token := store.Get(); token != nil {
					assert.Contains(t, values, token.AccessToken)
				}
			}
		}()
	}

	wg.Wait()

	require.NotNil(t, store.Get())
	assert.Contains(t, values, store.Get().AccessToken)
}
