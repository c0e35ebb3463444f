package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/filepool/internal/api/shared"
)

// decodeAndValidate reads the JSON body into req and validates it. On failure
// it writes a 400 response with missingMessage for missing fields, and returns
// false.
//
// Parameters:
//   - w: The HTTP response writer
//   - r: The HTTP request
//   - req: Pointer to the request struct
//   - missingMessage: Client message used when validation fails
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, missingMessage string) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			shared.RespondWithError(w, r, http.StatusBadRequest, missingMessage)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	return validateRequest(w, r, req, missingMessage)
}

// validateRequest runs the struct validator and answers 400 on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}, missingMessage string) bool {
	if err := shared.ValidateRequest(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, missingMessage, err)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return false
	}
	return true
}
