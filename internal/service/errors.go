package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrEmptyBatch indicates a batch request without files.
	ErrEmptyBatch = errors.New("batch contains no files")
)

// FileServiceError wraps errors from the file service with context.
type FileServiceError struct {
	// Operation is the operation that failed (e.g., "read_file", "process_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for FileServiceError.
func (e *FileServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("file service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FileServiceError) Unwrap() error {
	return e.Err
}

// NewFileServiceError creates a new FileServiceError, or returns nil for a
// nil err.
func NewFileServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &FileServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
