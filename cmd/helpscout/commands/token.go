package commands

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// tokenInfo is the printable view of an access token.
type tokenInfo struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	TokenType   string `json:"token_type"   yaml:"token_type"`
	ExpiresAt   string `json:"expires_at"   yaml:"expires_at"`
	ExpiresIn   string `json:"expires_in"   yaml:"expires_in"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token",
		Long:  "Mint an access token with the configured client credentials. The token itself is masked unless --show is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			token, err := client.GetAccessToken(ctx)
			if err != nil {
				return fmt.Errorf("failed to get access token: %w", err)
			}

			info := tokenInfo{
				AccessToken: constants.MaskedSecret,
				TokenType:   token.TokenType,
				ExpiresAt:   token.ExpiresAt.Format(time.RFC3339),
				ExpiresIn:   time.Until(token.ExpiresAt).Round(time.Second).String(),
			}

			if show {
				info.AccessToken = token.AccessToken
			}

			format := viper.GetString(KeyOutput)
			if format != constants.FormatTable && format != "" {
				return outputStructured(cmd.OutOrStdout(), format, info)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append([]string{"Access Token", info.AccessToken})
			_ = table.Append([]string{"Token Type", info.TokenType})
			_ = table.Append([]string{"Expires At", info.ExpiresAt})
			_ = table.Append([]string{"Expires In", info.ExpiresIn})

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the access token in clear text")

	return cmd
}
