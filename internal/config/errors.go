package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoServerName is returned when neither --wiki nor the config file
	// resolves to a wiki server name.
	ErrNoServerName = errors.New("no wiki server name: use --wiki or configure a wiki in the config file")

	// ErrUnknownWiki is returned when --wiki names a wiki ID that is not in
	// the config file and does not look like a server name.
	ErrUnknownWiki = errors.New("unknown wiki")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the sync concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrIncompleteCredentials is returned when only one of username and
	// password is set.
	ErrIncompleteCredentials = errors.New("incomplete bot credentials: username and password must be set together")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
