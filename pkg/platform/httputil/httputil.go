package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "sangham/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every non-2xx answer.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Errors  []dErrors.FieldError `json:"errors,omitempty"`
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the error envelope. Errors that are not
// domain errors are reported as opaque internal errors.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, "Internal server error")
	}
	WriteJSON(w, StatusFor(de.Code), ErrorResponse{
		Error:   string(de.Code),
		Message: de.Message,
		Errors:  de.Fields,
	})
}
