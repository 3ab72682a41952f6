package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// apiRequest is one resource request seen by the fake API.
type apiRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// fakeAPI serves a token endpoint plus routes keyed by "METHOD /path".
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []apiRequest
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T, routes map[string]http.HandlerFunc) *fakeAPI {
	t.Helper()

	api := &fakeAPI{routes: routes}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)

	return api
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v2/oauth2/token" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "cli-token",
			"token_type":   "bearer",
			"expires_in":   7200,
		})

		return
	}

	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.requests = append(a.requests, apiRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Body:     string(body),
	})
	a.mu.Unlock()

	handler, ok := a.routes[r.Method+" "+r.URL.Path]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})

		return
	}

	handler(w, r)
}

func (a *fakeAPI) Requests() []apiRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]apiRequest(nil), a.requests...)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// setupViper points the CLI configuration at api and a temporary config file.
// Tests using it must not run in parallel because viper state is global.
func setupViper(t *testing.T, baseURL string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), ConfigFileName)
	viper.SetConfigFile(configFile)

	viper.Set(KeyClientID, "cli-id")
	viper.Set(KeyClientSecret, "cli-secret")
	viper.Set(KeyPageInterval, "1ms")

	if baseURL != "" {
		viper.Set(KeyBaseURL, baseURL)
	}

	return configFile
}

// runCommand executes cmd with args and returns what it wrote to stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	cmd.SetContext(t.Context())

	err := cmd.Execute()

	return out.String(), err
}
