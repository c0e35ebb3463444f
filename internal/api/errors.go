package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/phrazzld/filepool/internal/api/shared"
	"github.com/phrazzld/filepool/internal/service"
	"github.com/phrazzld/filepool/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var unsupported *task.UnsupportedOperationError

	switch {
	// Bad request errors
	case errors.Is(err, task.ErrValidation),
		errors.As(err, &unsupported),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound

	case errors.Is(err, task.ErrPoolClosed):
		return http.StatusServiceUnavailable

	case errors.Is(err, task.ErrTaskTimeout):
		return http.StatusGatewayTimeout

	// The request's own context ended before the task did
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly error message based on the
// error type. Messages of errors built by this service are safe to show;
// everything else is replaced by fallback.
func GetSafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *task.ValidationError
	var unsupported *task.UnsupportedOperationError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()

	case errors.As(err, &unsupported):
		return unsupported.Error()

	case errors.Is(err, service.ErrEmptyBatch):
		return "Files array is required"

	case errors.Is(err, fs.ErrNotExist):
		return "File not found"

	case errors.Is(err, task.ErrPoolClosed):
		return "Service is shutting down"

	case errors.Is(err, task.ErrTaskTimeout):
		return "Operation timed out"

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "Request ended before the operation finished"

	default:
		if fallback == "" {
			return "An unexpected error occurred"
		}
		return fallback
	}
}

// HandleAPIError writes the error response for err, choosing the status code
// and a client-safe message. The full error is only logged.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err, fallback), err)
}
