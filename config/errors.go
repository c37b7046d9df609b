package config

import "errors"

var (
	// ErrInvalidBackend indicates the storage backend is not recognized.
	ErrInvalidBackend = errors.New("config: invalid backend (must be \"bolt\", \"firestore\", or \"file\")")

	// ErrMissingProject indicates the firestore backend was chosen without a project id.
	ErrMissingProject = errors.New("config: firestore backend requires a project id")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidTolerance indicates a negative tolerance.
	ErrInvalidTolerance = errors.New("config: tolerance must not be negative")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfig indicates the configuration file could not be parsed.
	ErrInvalidConfig = errors.New("config: invalid configuration file")
)
