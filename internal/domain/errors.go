package domain

import "errors"

var (
	// ErrValidation marks input the core rejects without changing state:
	// empty text, unknown enum values, duplicate or reserved segment names.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks an operation on a task, sub-task or segment that
	// does not exist (usually a stale id).
	ErrNotFound = errors.New("not found")
)
