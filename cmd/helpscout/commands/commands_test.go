//nolint:testpackage // Need access to internal types
package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func customerPage(page, totalPages int, names ...string) map[string]interface{} {
	customers := make([]map[string]interface{}, 0, len(names))
	for i, name := range names {
		customers = append(customers, map[string]interface{}{"id": page*100 + i, "firstName": name})
	}

	return map[string]interface{}{
		"_embedded": map[string]interface{}{"customers": customers},
		"page":      map[string]interface{}{"number": page, "totalPages": totalPages},
	}
}

func customerRoutes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v2/customers": func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("page") {
			case "1":
				writeJSON(w, http.StatusOK, customerPage(1, 2, "Ada", "Grace"))
			default:
				writeJSON(w, http.StatusOK, customerPage(2, 2, "Edsger"))
			}
		},
	}
}

func TestListCommand(t *testing.T) {
	api := newFakeAPI(t, customerRoutes())
	setupViper(t, api.URL+"/v2/")

	out, err := runCommand(t, NewListCommand(), "customers", "--query", "sortOrder=asc")
	require.NoError(t, err)

	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Grace")
	assert.Contains(t, out, "Edsger")
	assert.Contains(t, out, "Total: 3")

	requests := api.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "page=1&sortOrder=asc", requests[0].RawQuery)
	assert.Equal(t, "page=2&sortOrder=asc", requests[1].RawQuery)
}

func TestListCommandJSONOutput(t *testing.T) {
	api := newFakeAPI(t, customerRoutes())
	setupViper(t, api.URL+"/v2/")
	viper.Set(KeyOutput, constants.FormatJSON)

	out, err := runCommand(t, NewListCommand(), "customers")
	require.NoError(t, err)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "Edsger", items[2]["firstName"])
}

func TestListCommandMaxPages(t *testing.T) {
	api := newFakeAPI(t, customerRoutes())
	setupViper(t, api.URL+"/v2/")

	_, err := runCommand(t, NewListCommand(), "customers", "--max-pages", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list customers")
	assert.Len(t, api.Requests(), 1)
}

func TestListCommandWithParent(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /v2/conversations/42/threads": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"_embedded": map[string]interface{}{"threads": []map[string]interface{}{{"id": 7, "type": "note"}}},
				"page":      map[string]interface{}{"number": 1, "totalPages": 1},
			})
		},
	})
	setupViper(t, api.URL+"/v2/")
	viper.Set(KeyOutput, constants.FormatYAML)

	out, err := runCommand(t, NewListCommand(), "threads", "--parent-type", "conversations", "--parent-id", "42")
	require.NoError(t, err)

	var items []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "note", items[0]["type"])
}

func TestGetCommand(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /v2/customers/100": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 100, "firstName": "Ada", "_links": map[string]interface{}{}})
		},
	})
	setupViper(t, api.URL+"/v2/")

	out, err := runCommand(t, NewGetCommand(), "customers", "100", "--embed", "emails", "--embed", "phones")
	require.NoError(t, err)

	assert.Contains(t, out, "Ada")
	assert.NotContains(t, out, "_links")

	requests := api.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "embed=emails&embed=phones", requests[0].RawQuery)
}

func TestGetCommandNotFound(t *testing.T) {
	api := newFakeAPI(t, nil)
	setupViper(t, api.URL+"/v2/")

	_, err := runCommand(t, NewGetCommand(), "customers", "404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get customers 404")
}

func TestCreateCommand(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /v2/customers": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderResourceID, "555")
			w.WriteHeader(http.StatusCreated)
		},
	})
	setupViper(t, api.URL+"/v2/")
	viper.Set(KeyOutput, constants.FormatJSON)

	out, err := runCommand(t, NewCreateCommand(), "customers", "--data", `{"firstName":"Ada"}`)
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, map[string]string{"type": "customers", "id": "555"}, result)

	requests := api.Requests()
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"firstName":"Ada"}`, requests[0].Body)
}

func TestCreateCommandRequiresData(t *testing.T) {
	api := newFakeAPI(t, nil)
	setupViper(t, api.URL+"/v2/")

	_, err := runCommand(t, NewCreateCommand(), "customers")
	require.ErrorIs(t, err, constants.ErrDataRequired)
	assert.Empty(t, api.Requests())
}

func TestUpdateCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		route  string
		method string
	}{
		{name: "put", args: []string{"customers", "100"}, route: "PUT /v2/customers/100", method: http.MethodPut},
		{name: "patch", args: []string{"conversations", "42", "--patch"}, route: "PATCH /v2/conversations/42", method: http.MethodPatch},
		{name: "put collection", args: []string{"settings"}, route: "PUT /v2/settings", method: http.MethodPut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, map[string]http.HandlerFunc{
				tt.route: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
			})
			setupViper(t, api.URL+"/v2/")

			args := append(append([]string{}, tt.args...), "--data", `{"op":"replace"}`)

			out, err := runCommand(t, NewUpdateCommand(), args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Successfully updated")

			requests := api.Requests()
			require.Len(t, requests, 1)
			assert.Equal(t, tt.method, requests[0].Method)
		})
	}
}

func TestDeleteCommand(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"DELETE /v2/customers/100": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
	})
	setupViper(t, api.URL+"/v2/")

	out, err := runCommand(t, NewDeleteCommand(), "customers", "100", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully deleted customers 100")
	assert.Len(t, api.Requests(), 1)
}

func TestDeleteCommandWithoutTerminal(t *testing.T) {
	api := newFakeAPI(t, nil)
	setupViper(t, api.URL+"/v2/")

	_, err := runCommand(t, NewDeleteCommand(), "customers", "100")
	require.ErrorIs(t, err, constants.ErrNotATerminal)
	assert.Empty(t, api.Requests())
}

func TestNoteCommand(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /v2/conversations/42/notes": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderResourceID, "9")
			w.WriteHeader(http.StatusCreated)
		},
	})
	setupViper(t, api.URL+"/v2/")

	out, err := runCommand(t, NewNoteCommand(), "42", "Called back")
	require.NoError(t, err)
	assert.Contains(t, out, "9")

	requests := api.Requests()
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"text":"Called back"}`, requests[0].Body)
}

func TestRawCommand(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /v2/mailboxes": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"count": 2})
		},
		"POST /v2/conversations/42/tags": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
	setupViper(t, api.URL+"/v2/")

	out, err := runCommand(t, NewRawCommand(), "get", "mailboxes")
	require.NoError(t, err)
	assert.Contains(t, out, "count")

	out, err = runCommand(t, NewRawCommand(), "POST", "conversations/42/tags", "--data", `{"tags":["vip"]}`)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d %s\n", http.StatusNoContent, http.StatusText(http.StatusNoContent)), out)

	_, err = runCommand(t, NewRawCommand(), "TRACE", "mailboxes")
	require.ErrorIs(t, err, constants.ErrUnsupportedRawMethod)
}

func TestTokenCommand(t *testing.T) {
	api := newFakeAPI(t, nil)
	setupViper(t, api.URL+"/v2/")
	viper.Set(KeyOutput, constants.FormatJSON)

	out, err := runCommand(t, NewTokenCommand())
	require.NoError(t, err)

	var info tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, constants.MaskedSecret, info.AccessToken)
	assert.Equal(t, "bearer", info.TokenType)

	out, err = runCommand(t, NewTokenCommand(), "--show")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "cli-token", info.AccessToken)
}

func TestCommandsRequireCredentials(t *testing.T) {
	setupViper(t, "")
	viper.Set(KeyClientSecret, "")

	_, err := runCommand(t, NewTokenCommand())
	require.ErrorIs(t, err, constants.ErrNoCredentialsConfigured)
}

func TestConfigSetAndUnset(t *testing.T) {
	configFile := setupViper(t, "")

	_, err := runCommand(t, NewConfigCommand(), "set", KeyBaseURL, "https://example.test/v2/")
	require.NoError(t, err)

	_, err = runCommand(t, NewConfigCommand(), "set", KeyRetryMax, "3")
	require.NoError(t, err)

	config, err := readConfigFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/v2/", config.BaseURL)
	assert.Equal(t, 3, config.RetryMax)

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	_, err = runCommand(t, NewConfigCommand(), "unset", KeyBaseURL)
	require.NoError(t, err)

	config, err = readConfigFile(configFile)
	require.NoError(t, err)
	assert.Empty(t, config.BaseURL)
	assert.Equal(t, 3, config.RetryMax)
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	setupViper(t, "")

	tests := []struct {
		key   string
		value string
		want  error
	}{
		{key: "colour", value: "blue", want: constants.ErrUnknownConfigKey},
		{key: KeyOutput, value: "xml", want: constants.ErrUnsupportedOutput},
	}

	for _, tt := range tests {
		_, err := runCommand(t, NewConfigCommand(), "set", tt.key, tt.value)
		require.ErrorIs(t, err, tt.want)
	}

	_, err := runCommand(t, NewConfigCommand(), "set", KeyPageInterval, "soon")
	require.Error(t, err)
}

func TestConfigShowMasksSecret(t *testing.T) {
	setupViper(t, "")

	out, err := runCommand(t, NewConfigCommand(), "show")
	require.NoError(t, err)

	assert.Contains(t, out, "cli-id")
	assert.Contains(t, out, constants.MaskedSecret)
	assert.NotContains(t, out, "cli-secret")
}

func TestConfigureCommandWithPipedInput(t *testing.T) {
	configFile := setupViper(t, "")

	cmd := NewConfigureCommand()
	cmd.SetIn(strings.NewReader("piped-id\npiped-secret\n"))

	_, err := runCommand(t, cmd, "--base-url", "https://example.test/v2/")
	require.NoError(t, err)

	config, err := readConfigFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "piped-id", config.ClientID)
	assert.Equal(t, "piped-secret", config.ClientSecret)
	assert.Equal(t, "https://example.test/v2/", config.BaseURL)
}

func TestVersionCommand(t *testing.T) {
	setupViper(t, "")
	viper.Set(KeyOutput, constants.FormatYAML)

	out, err := runCommand(t, NewVersionCommand("1.2.3", "abc123", "2026-10-16"))
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Built: "2026-10-16"}, info)
}
