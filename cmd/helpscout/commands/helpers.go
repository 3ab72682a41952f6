package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/fivetwenty-io/helpscout/pkg/hsclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// rateLimitWarningThreshold is the remaining per-minute budget below which
// the CLI warns on stderr.
const rateLimitWarningThreshold = 20

// createClient creates a Help Scout client from the effective configuration.
func createClient(ctx context.Context) (helpscout.Client, error) {
	config := loadConfig()

	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, constants.ErrNoCredentialsConfigured
	}

	level := slog.LevelWarn
	if viper.GetBool("verbose") || config.Debug {
		level = slog.LevelDebug
	}

	logger := helpscout.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	interceptors := helpscout.NewInterceptorChain()
	interceptors.AddResponseInterceptor(helpscout.RateLimitWarningInterceptor(logger, rateLimitWarningThreshold))

	clientConfig := &helpscout.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		BaseURL:      config.BaseURL,
		Debug:        config.Debug,
		Logger:       logger,
		RetryMax:     config.RetryMax,
		Interceptors: interceptors,
	}

	if config.PageInterval != "" {
		interval, err := parseDuration(config.PageInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KeyPageInterval, err)
		}

		clientConfig.PageInterval = interval
	}

	return hsclient.New(ctx, clientConfig)
}

func parseDuration(value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", value, err)
	}

	return duration, nil
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// parseKeyValues turns repeated key=value flags into query values.
func parseKeyValues(pairs []string) (url.Values, error) {
	values := url.Values{}

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		values.Add(parts[0], parts[1])
	}

	return values, nil
}

// parseParent builds a parent scope from the --parent-type and --parent-id flags.
func parseParent(parentType, parentID string) (*helpscout.Parent, error) {
	if parentType == "" && parentID == "" {
		return nil, nil //nolint:nilnil // no parent is a valid result
	}

	if parentType == "" || parentID == "" {
		return nil, constants.ErrParentRequiresBoth
	}

	return &helpscout.Parent{Type: parentType, ID: parentID}, nil
}

// parseData reads a JSON payload given inline or as @path.
func parseData(data string) (json.RawMessage, error) {
	if data == "" {
		return nil, constants.ErrDataRequired
	}

	raw := []byte(data)

	if strings.HasPrefix(data, constants.FileArgumentPrefix) {
		path := strings.TrimPrefix(data, constants.FileArgumentPrefix)
		if strings.Contains(path, "..") {
			return nil, fmt.Errorf("%w: %s", constants.ErrDirectoryTraversal, path)
		}

		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}

		raw = content
	}

	if !json.Valid(raw) {
		return nil, constants.ErrInvalidJSONData
	}

	return json.RawMessage(bytes.TrimSpace(raw)), nil
}

// confirm asks the user to confirm prompt on a terminal.
func confirm(w io.Writer, prompt string) error {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return constants.ErrNotATerminal
	}

	_, _ = fmt.Fprintf(w, "%s (y/N): ", prompt)

	var response string

	_, _ = fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	if response != constants.ConfirmationY && response != constants.ConfirmationYes {
		return constants.ErrOperationCancelled
	}

	return nil
}

// truncate shortens s to the table cell limit.
func truncate(s string) string {
	if len(s) <= constants.StringTruncationLength {
		return s
	}

	return s[:constants.StringTruncationLength-3] + "..."
}

// cellValue renders one JSON value as a table cell.
func cellValue(raw json.RawMessage) string {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return truncate(string(raw))
	}

	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return truncate(v)
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	default:
		compact := &bytes.Buffer{}
		if err := json.Compact(compact, raw); err != nil {
			return truncate(string(raw))
		}

		return truncate(compact.String())
	}
}

// decodeObject decodes raw as a JSON object, returning false for other values.
func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return nil, false
	}

	return object, true
}

func sortedKeys(object map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		if key == constants.EmbeddedKey || key == "_links" {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// outputStructured writes value as JSON or YAML according to format.
func outputStructured(w io.Writer, format string, value interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		// Round-trip through interface{} so raw JSON renders as YAML.
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}

		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to convert output: %w", err)
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		return encoder.Encode(generic)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// outputResource renders a single resource.
func outputResource(w io.Writer, raw json.RawMessage) error {
	format := viper.GetString(KeyOutput)
	if format != constants.FormatTable && format != "" {
		return outputStructured(w, format, raw)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	if object, ok := decodeObject(raw); ok {
		for _, key := range sortedKeys(object) {
			_ = table.Append([]string{key, cellValue(object[key])})
		}
	} else {
		_ = table.Append([]string{"value", cellValue(raw)})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// listColumns picks the table columns for a list of resources.
func listColumns(items []json.RawMessage) []string {
	preferred := []string{"id", "name", "subject", "email", "firstName", "lastName", "status", "type", "createdAt"}

	present := map[string]bool{}

	for _, item := range items {
		object, ok := decodeObject(item)
		if !ok {
			continue
		}

		for key := range object {
			present[key] = true
		}
	}

	var columns []string

	for _, key := range preferred {
		if present[key] {
			columns = append(columns, key)
		}
	}

	if len(columns) == 0 {
		columns = []string{"value"}
	}

	return columns
}

// outputResources renders a list of resources.
func outputResources(w io.Writer, items []json.RawMessage) error {
	format := viper.GetString(KeyOutput)
	if format != constants.FormatTable && format != "" {
		if items == nil {
			items = []json.RawMessage{}
		}

		return outputStructured(w, format, items)
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No resources found")

		return err
	}

	columns := listColumns(items)

	headers := make([]any, 0, len(columns))
	for _, column := range columns {
		headers = append(headers, column)
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers...)

	for _, item := range items {
		object, isObject := decodeObject(item)

		row := make([]string, 0, len(columns))

		for _, column := range columns {
			switch {
			case !isObject:
				row = append(row, cellValue(item))
			case object[column] != nil:
				row = append(row, cellValue(object[column]))
			default:
				row = append(row, "")
			}
		}

		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d\n", len(items))

	return err
}

// outputCreated renders the identifier of a newly created resource.
func outputCreated(w io.Writer, objectType, id string) error {
	result := map[string]string{"type": objectType, "id": id}

	format := viper.GetString(KeyOutput)
	if format != constants.FormatTable && format != "" {
		return outputStructured(w, format, result)
	}

	if id == "" {
		id = constants.NotAvailable
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	_ = table.Append([]string{"Type", objectType})
	_ = table.Append([]string{"Resource ID", id})

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// commandContext returns the command context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
