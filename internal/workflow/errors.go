package workflow

import "errors"

var (
	// ErrPermissionDenied is returned when the actor lacks the capability
	// required for the requested transition
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIllegalTransition is returned when the target stage is not a legal
	// successor of the report's current stage
	ErrIllegalTransition = errors.New("illegal stage transition")

	// ErrNotFound is returned when the expense report does not exist
	ErrNotFound = errors.New("expense report not found")

	// ErrConcurrentModification is returned when the report's stage changed
	// between read and write; the caller should re-read and retry
	ErrConcurrentModification = errors.New("concurrent modification")
)
