package member

import "errors"

var (
	// ErrNotFound indicates no member exists for the given id.
	ErrNotFound = errors.New("member: not found")

	// ErrDuplicateID indicates a member with this id already exists.
	ErrDuplicateID = errors.New("member: duplicate id")

	// ErrEmptyID indicates the member id is empty.
	ErrEmptyID = errors.New("member: id must not be empty")

	// ErrParentNotFound indicates the parent id does not reference a known member.
	ErrParentNotFound = errors.New("member: parent not found")

	// ErrCycle indicates the parent assignment would create a cycle.
	ErrCycle = errors.New("member: parent assignment creates a cycle")

	// ErrRateOutOfRange indicates a rate outside [0, 100].
	ErrRateOutOfRange = errors.New("member: rate must be between 0 and 100")

	// ErrRateExceedsParent indicates a channel rate higher than the parent's.
	ErrRateExceedsParent = errors.New("member: rate exceeds parent rate")

	// ErrInvalidLevel indicates the level is unknown or not below the parent's level.
	ErrInvalidLevel = errors.New("member: invalid level")

	// ErrHasChildren indicates a member cannot be removed while it still has children.
	ErrHasChildren = errors.New("member: member has children")

	// ErrLineageTooDeep indicates the parent walk exceeded MaxDepth, which
	// only happens on cyclic data.
	ErrLineageTooDeep = errors.New("member: lineage exceeds maximum depth")
)
