//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/fivetwenty-io/helpscout/pkg/hsclient"
	"github.com/joho/godotenv"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	BinaryPath   string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables and an
// optional .env file next to the tests.
func LoadTestConfig() *TestConfig {
	_ = godotenv.Load()

	return &TestConfig{
		ClientID:     os.Getenv("HELPSCOUT_CLIENT_ID"),
		ClientSecret: os.Getenv("HELPSCOUT_CLIENT_SECRET"),
		BaseURL:      os.Getenv("HELPSCOUT_BASE_URL"),
		BinaryPath:   getBinaryPath(),
		Verbose:      os.Getenv("HELPSCOUT_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the helpscout binary.
func getBinaryPath() string {
	if path := os.Getenv("HELPSCOUT_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../helpscout",
		"./helpscout",
		"../helpscout",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "helpscout" // Fallback to PATH
}

// SkipIfMissingCredentials skips the test when no credentials are configured.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.ClientID == "" || config.ClientSecret == "" {
		t.Skip("HELPSCOUT_CLIENT_ID or HELPSCOUT_CLIENT_SECRET not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("helpscout binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// NewClient creates a library client for the configured account.
func (config *TestConfig) NewClient(t *testing.T) helpscout.Client {
	t.Helper()

	client, err := hsclient.New(t.Context(), &helpscout.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		BaseURL:      config.BaseURL,
		RetryMax:     2,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// CommandRunner provides utilities for running helpscout commands.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a helpscout command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HELPSCOUT_CLIENT_ID="+runner.config.ClientID,
		"HELPSCOUT_CLIENT_SECRET="+runner.config.ClientSecret,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// uniqueEmail returns a throwaway address for test customers.
func uniqueEmail() string {
	return "testing" + time.Now().Format("20060102150405.000000000") + "@example.com"
}
