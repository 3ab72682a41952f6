package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/helpscout/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys shared by flags, environment variables and the config file.
const (
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
	KeyBaseURL      = "base_url"
	KeyOutput       = "output"
	KeyDebug        = "debug"
	KeyRetryMax     = "retry_max"
	KeyPageInterval = "page_interval"

	// ConfigFileName is the name of the config file inside ConfigDir.
	ConfigFileName = "config.yml"
)

// Config represents the CLI configuration.
type Config struct {
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	BaseURL      string `json:"base_url,omitempty"      yaml:"base_url,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`
	Debug        bool   `json:"debug,omitempty"         yaml:"debug,omitempty"`
	RetryMax     int    `json:"retry_max,omitempty"     yaml:"retry_max,omitempty"`
	PageInterval string `json:"page_interval,omitempty" yaml:"page_interval,omitempty"`
}

// ConfigDir returns the directory holding the CLI configuration.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrConfigDirUnavailable, err)
	}

	return filepath.Join(home, ".helpscout"), nil
}

func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, ConfigFileName), nil
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		ClientID:     viper.GetString(KeyClientID),
		ClientSecret: viper.GetString(KeyClientSecret),
		BaseURL:      viper.GetString(KeyBaseURL),
		Output:       viper.GetString(KeyOutput),
		Debug:        viper.GetBool(KeyDebug),
		RetryMax:     viper.GetInt(KeyRetryMax),
		PageInterval: viper.GetString(KeyPageInterval),
	}
}

// readConfigFile reads only what is persisted in path, ignoring flags and
// environment overrides.
func readConfigFile(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(filepath.Clean(path))
	if os.IsNotExist(err) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// saveConfigStruct writes config to path as YAML.
func saveConfigStruct(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setConfigValue assigns the string form of value to key.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case KeyClientID:
		config.ClientID = value
	case KeyClientSecret:
		config.ClientSecret = value
	case KeyBaseURL:
		config.BaseURL = value
	case KeyOutput:
		if err := validateOutputFormat(value); err != nil {
			return err
		}

		config.Output = value
	case KeyDebug:
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		config.Debug = debug
	case KeyRetryMax:
		retryMax, err := strconv.Atoi(value)
		if err != nil || retryMax < 0 {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}

		config.RetryMax = retryMax
	case KeyPageInterval:
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		config.PageInterval = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// unsetConfigValue clears key.
func unsetConfigValue(config *Config, key string) error {
	switch key {
	case KeyClientID:
		config.ClientID = ""
	case KeyClientSecret:
		config.ClientSecret = ""
	case KeyBaseURL:
		config.BaseURL = ""
	case KeyOutput:
		config.Output = ""
	case KeyDebug:
		config.Debug = false
	case KeyRetryMax:
		config.RetryMax = 0
	case KeyPageInterval:
		config.PageInterval = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// configRows flattens config into property rows with the secret masked.
func configRows(config *Config) [][]string {
	secret := ""
	if config.ClientSecret != "" {
		secret = constants.MaskedSecret
	}

	rows := [][]string{
		{KeyClientID, config.ClientID},
		{KeyClientSecret, secret},
		{KeyBaseURL, config.BaseURL},
		{KeyOutput, config.Output},
		{KeyDebug, strconv.FormatBool(config.Debug)},
		{KeyRetryMax, strconv.Itoa(config.RetryMax)},
		{KeyPageInterval, config.PageInterval},
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	return rows
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the helpscout CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			if masked.ClientSecret != "" {
				masked.ClientSecret = constants.MaskedSecret
			}

			return renderConfig(cmd.OutOrStdout(), &masked)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Keys: client_id, client_secret, base_url, output, debug, retry_max, page_interval`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigFile(cmd.OutOrStdout(), func(config *Config) error {
				return setConfigValue(config, args[0], args[1])
			}, fmt.Sprintf("Set %s", args[0]))
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigFile(cmd.OutOrStdout(), func(config *Config) error {
				return unsetConfigValue(config, args[0])
			}, fmt.Sprintf("Unset %s", args[0]))
		},
	}
}

// updateConfigFile applies change to the persisted config and saves it.
func updateConfigFile(w io.Writer, change func(*Config) error, message string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	config, err := readConfigFile(path)
	if err != nil {
		return err
	}

	if err := change(config); err != nil {
		return err
	}

	if err := saveConfigStruct(path, config); err != nil {
		return err
	}

	return outputConfigUpdateResult(w, message, path)
}

func renderConfig(w io.Writer, config *Config) error {
	switch viper.GetString(KeyOutput) {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(config)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		return encoder.Encode(config)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		for _, row := range configRows(config) {
			_ = table.Append(row)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func outputConfigUpdateResult(w io.Writer, message, path string) error {
	result := map[string]string{
		"message":     message,
		"config_file": path,
	}

	switch viper.GetString(KeyOutput) {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		return encoder.Encode(result)
	default:
		_, err := fmt.Fprintf(w, "%s in %s\n", message, path)

		return err
	}
}
