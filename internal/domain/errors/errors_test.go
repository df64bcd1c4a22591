package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailsDoesNotMutateReceiver(t *testing.T) {
	first := ErrInvalidInput.WithDetails(map[string]interface{}{"field": "a"})
	second := ErrInvalidInput.WithDetails(map[string]interface{}{"field": "b"})

	assert.Equal(t, "a", first.Details["field"])
	assert.Equal(t, "b", second.Details["field"])
	assert.Nil(t, ErrInvalidInput.Details)
	assert.Equal(t, ErrInvalidInput.Code, first.Code)
	assert.Equal(t, ErrInvalidInput.StatusCode, first.StatusCode)
}

func TestWithCauseDoesNotMutateReceiver(t *testing.T) {
	wrapped := ErrSeriesNotFound.WithCause(assert.AnError)

	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Nil(t, ErrSeriesNotFound.Cause)
	assert.Equal(t, ErrSeriesNotFound.Code, wrapped.Code)
}
