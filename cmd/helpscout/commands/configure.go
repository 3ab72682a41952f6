package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewConfigureCommand creates the configure command.
func NewConfigureCommand() *cobra.Command {
	var (
		clientID string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store client credentials",
		Long: `Prompt for the OAuth2 application id and secret and store them in the config file.

The secret is read without echo. HELPSCOUT_CLIENT_ID and HELPSCOUT_CLIENT_SECRET
override the stored values at run time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())

			if clientID == "" {
				value, err := prompt(out, reader, "Client ID: ")
				if err != nil {
					return err
				}

				clientID = value
			}

			secret, err := readSecret(out, reader, "Client Secret: ")
			if err != nil {
				return err
			}

			if clientID == "" || secret == "" {
				return constants.ErrNoCredentialsConfigured
			}

			return updateConfigFile(out, func(config *Config) error {
				config.ClientID = clientID
				config.ClientSecret = secret

				if baseURL != "" {
					config.BaseURL = baseURL
				}

				return nil
			}, "Saved client credentials")
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 application id")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL to store")

	return cmd
}

func prompt(w io.Writer, reader *bufio.Reader, label string) (string, error) {
	_, _ = fmt.Fprint(w, label)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// readSecret reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func readSecret(w io.Writer, reader *bufio.Reader, label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return prompt(w, reader, label)
	}

	_, _ = fmt.Fprint(w, label)

	secret, err := term.ReadPassword(int(syscall.Stdin))

	_, _ = fmt.Fprintln(w)

	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}
