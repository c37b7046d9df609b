package store

import "errors"

var (
	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("store: invalid base directory")

	// ErrIOFailure indicates a file read/write error.
	ErrIOFailure = errors.New("store: I/O failure")

	// ErrInvalidID indicates an id that cannot be used as a storage key.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrEmptyProject indicates a Firestore project id was not provided.
	ErrEmptyProject = errors.New("store: firestore project id must not be empty")
)
