// Package httputil centralizes JSON response writing and the translation of
// coded domain errors into HTTP statuses.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "eventhub/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a coded domain error to an HTTP status and a stable JSON
// envelope. Internal and invariant failures omit the description so storage
// details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if includeDescription(code) {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, ToHTTPStatus(code), body)
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict,
		dErrors.CodeInvalidTransition,
		dErrors.CodeCapacityExceeded,
		dErrors.CodeIneligibleRegistration:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func includeDescription(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInternal, dErrors.CodeInvariantViolation:
		return false
	default:
		return true
	}
}
