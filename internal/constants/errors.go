package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentialsConfigured = errors.New("no client credentials configured, use 'helpscout configure' to add them")
	ErrUnknownConfigKey        = errors.New("unknown configuration key")
	ErrConfigDirUnavailable    = errors.New("could not determine configuration directory")
)

// Input errors.
var (
	ErrInvalidKeyValue      = errors.New("expected key=value")
	ErrDataRequired         = errors.New("--data is required")
	ErrInvalidJSONData      = errors.New("data is not valid JSON")
	ErrUnsupportedOutput    = errors.New("unsupported output format")
	ErrNotATerminal         = errors.New("stdin is not a terminal, pass --force to skip confirmation")
	ErrOperationCancelled   = errors.New("operation cancelled")
	ErrParentRequiresBoth   = errors.New("--parent-type and --parent-id must be given together")
	ErrDirectoryTraversal   = errors.New("directory traversal detected in file path")
	ErrUnsupportedRawMethod = errors.New("unsupported HTTP method")
)
