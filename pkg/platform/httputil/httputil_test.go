package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "sangham/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "Failed to fetch submissions"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body.Error)
		}
		if body.Message != "Failed to fetch submissions" {
			t.Fatalf("unexpected message %q", body.Message)
		}
	})

	t.Run("plain error becomes opaque internal error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("secret detail"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message == "secret detail" {
			t.Fatalf("expected cause to be hidden")
		}
	})

	t.Run("validation includes field details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("Validation failed", []dErrors.FieldError{
			{Field: "name", Message: "Name must be at least 2 characters"},
		}))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(body.Errors) != 1 || body.Errors[0].Field != "name" {
			t.Fatalf("expected name field error, got %+v", body.Errors)
		}
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeBadRequest:    http.StatusBadRequest,
			dErrors.CodeUnauthorized:  http.StatusUnauthorized,
			dErrors.CodeNotFound:      http.StatusNotFound,
			dErrors.CodeConflict:      http.StatusConflict,
			dErrors.CodeMisconfigured: http.StatusInternalServerError,
		}
		for code, want := range cases {
			if got := StatusFor(code); got != want {
				t.Fatalf("StatusFor(%s) = %d, want %d", code, got, want)
			}
		}
	})
}
