package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load submissions")

	assert.Equal(t, "failed to load submissions", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "submission not found")
	wrapped := fmt.Errorf("approve: %w", base)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeUnauthorized, CodeOf(New(CodeUnauthorized, "no")))
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("Validation failed", []FieldError{
		{Field: "name", Message: "Name must be at least 2 characters"},
		{Field: "state", Message: "State is required"},
	})

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Len(t, de.Fields, 2)
}
