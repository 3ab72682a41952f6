package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/auth"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
)

// RecordedRequest is one request seen by a TestServer.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

// TestHandler answers one request of a TestServer.
type TestHandler func(w http.ResponseWriter, r *http.Request)

// TestServer is an httptest server that records every request and serves a
// fixed access token at /v2/oauth2/token.
type TestServer struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []RecordedRequest
	tokenCalls  int
	handler     TestHandler
	tokenStatus int
}

// NewTestServer starts a server answering resource requests with handler.
func NewTestServer(t *testing.T, handler TestHandler) *TestServer {
	t.Helper()

	server := &TestServer{handler: handler, tokenStatus: http.StatusOK}

	server.Server = httptest.NewServer(http.HandlerFunc(server.serve))
	t.Cleanup(server.Close)

	return server
}

func (s *TestServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v2/oauth2/token" {
		s.mu.Lock()
		s.tokenCalls++
		status := s.tokenStatus
		s.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "bearer",
			"expires_in":   7200,
		})

		return
	}

	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	s.mu.Unlock()

	s.handler(w, r)
}

// SetTokenStatus makes the token endpoint answer with status.
func (s *TestServer) SetTokenStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenStatus = status
}

// Requests returns the resource requests seen so far.
func (s *TestServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// TokenCalls returns how many times the token endpoint was hit.
func (s *TestServer) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenCalls
}

// BaseURL returns the versioned API root of the server.
func (s *TestServer) BaseURL() string {
	return s.URL + "/v2/"
}

// NewTestClient creates a client against server with a fast page interval.
func NewTestClient(t *testing.T, server *TestServer) *Client {
	t.Helper()

	client, err := New(t.Context(), &helpscout.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      server.BaseURL(),
		PageInterval: 5 * time.Millisecond,
		TokenCache:   auth.NewTokenStore(),
	})
	if err != nil {
		t.Fatalf("creating test client: %v", err)
	}

	return client
}

// WriteJSON writes value as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
