package settle

import "errors"

var (
	// ErrUnknownRoot indicates the selected root is not a known member.
	ErrUnknownRoot = errors.New("settle: unknown root member")

	// ErrPerformerOutsideRoot indicates an input names a member that is not
	// in the selected root's subtree.
	ErrPerformerOutsideRoot = errors.New("settle: performer outside selected root")

	// ErrNoInputs indicates a run was requested without any inputs.
	ErrNoInputs = errors.New("settle: no inputs")

	// ErrLoadMembers indicates the member snapshot could not be loaded.
	ErrLoadMembers = errors.New("settle: load members")

	// ErrPersistLog indicates the settlement log could not be stored.
	ErrPersistLog = errors.New("settle: persist log")
)
