package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/spf13/cobra"
)

// rawPageFetcher fetches list pages through RawAPI so the CLI can apply its
// own pagination options.
type rawPageFetcher struct {
	client helpscout.AuthClient
}

func (f rawPageFetcher) FetchPage(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := f.client.RawAPI(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func validateRawMethod(method string) (string, error) {
	method = strings.ToUpper(method)

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedRawMethod, method)
	}
}

// NewRawCommand creates the raw command.
func NewRawCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "raw METHOD PATH",
		Short: "Send an authenticated request",
		Long: `Send an authenticated request to any API path and print the response body.

PATH is relative to the base URL unless it is an absolute URL.`,
		Example: `  helpscout raw GET mailboxes
  helpscout raw POST conversations/42/tags --data '{"tags":["vip"]}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := validateRawMethod(args[0])
			if err != nil {
				return err
			}

			var payload interface{}

			if data != "" {
				raw, err := parseData(data)
				if err != nil {
					return err
				}

				payload = raw
			}

			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			resp, err := client.RawAPI(ctx, method, args[1], payload)
			if err != nil {
				return fmt.Errorf("%s %s failed: %w", method, args[1], err)
			}

			if len(bytes.TrimSpace(resp.Body)) == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))

				return err
			}

			if !json.Valid(resp.Body) {
				_, err = cmd.OutOrStdout().Write(resp.Body)

				return err
			}

			return outputResource(cmd.OutOrStdout(), json.RawMessage(resp.Body))
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload, or @file to read it from a file")

	return cmd
}
