package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreError("load history", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
	assert.Contains(t, err.Error(), "STORE_ERROR")
}

func TestAppError_IsMatchesCode(t *testing.T) {
	wrapped := fmt.Errorf("history: %w", ErrNothingToUndo)

	assert.ErrorIs(t, wrapped, ErrNothingToUndo)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(wrapped))
}

func TestAsAppError_PlainError(t *testing.T) {
	got := AsAppError(errors.New("boom"))

	assert.Equal(t, CodeInternalError, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed([]string{"too short"}, []string{"spam"})

	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "too short", err.Message)
	assert.Equal(t, []string{"spam"}, err.Details["warnings"])
}

func TestBatchSize(t *testing.T) {
	err := BatchSize(51, 50)

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, 51, err.Details["count"])
}
