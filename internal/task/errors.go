package task

import (
	"errors"
	"fmt"
)

// Common errors returned by the pool
var (
	// ErrPoolClosed is returned for tasks submitted after shutdown and used to
	// fail tasks that were still queued or running when shutdown began.
	ErrPoolClosed = errors.New("task pool is closed")

	// ErrTaskTimeout marks a task that ran past the pool's per-task deadline.
	// It wraps context.DeadlineExceeded, which a caller's own deadline
	// produces without this marker.
	ErrTaskTimeout = errors.New("task deadline exceeded")

	// ErrValidation is the sentinel matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a missing or malformed payload field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnsupportedOperationError is returned when an execution unit receives an
// operation it does not know.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation: %q", e.Operation)
}

// IOError wraps a filesystem failure. The underlying error is usually an
// *fs.PathError, so errors.Is(err, fs.ErrNotExist) works through it.
type IOError struct {
	Op   Operation
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// UnitCrashError reports that an execution unit stopped outside the normal
// result protocol while it held a task.
type UnitCrashError struct {
	SlotID int
	Reason string
}

func (e *UnitCrashError) Error() string {
	return fmt.Sprintf("execution unit %d crashed: %s", e.SlotID, e.Reason)
}
