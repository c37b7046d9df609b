package ledger

import "errors"

var (
	// ErrNotFound indicates no log exists for the given id.
	ErrNotFound = errors.New("ledger: log not found")

	// ErrDuplicateLog indicates a log with this id already exists. Logs are
	// immutable once stored.
	ErrDuplicateLog = errors.New("ledger: duplicate log")

	// ErrEmptyID indicates the log id is empty.
	ErrEmptyID = errors.New("ledger: log id must not be empty")

	// ErrNilLog indicates a nil log was passed to a store.
	ErrNilLog = errors.New("ledger: log is nil")
)
