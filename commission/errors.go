package commission

import "errors"

var (
	// ErrLeafSkipped indicates a leaf input could not be distributed and
	// contributed no entries. The wrapped error names the cause.
	ErrLeafSkipped = errors.New("commission: leaf input skipped")
)
