package auth

import (
	"sync"

	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// Token is the cached access token.
type Token = helpscout.Token

// TokenStore is a memory-only, single-slot token cache safe for concurrent use.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

var _ helpscout.TokenCache = (*TokenStore)(nil)

// NewTokenStore creates an empty store. Its token counts as expired.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the current token wholesale.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}
