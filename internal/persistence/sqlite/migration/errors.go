package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed wraps a failure while executing a migration's SQL.
	ErrMigrationFailed = errors.New("migration: execution failed")
	// ErrVersionConflict is raised when the tracking table disagrees with the
	// declared migration sequence.
	ErrVersionConflict = errors.New("migration: version conflict")
)

// Error carries the version and operation that failed.
type Error struct {
	Version   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Operation, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError constructs a migration error with context.
func NewError(version, operation string, err error) *Error {
	return &Error{Version: version, Operation: operation, Err: err}
}
