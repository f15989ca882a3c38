package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrInternal, ErrConflict, ErrServiceUnavail,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("sqlite: database is locked")
	appErr := &AppError{Code: "LOAD_FAILURE", Message: "cart could not be read", Err: inner}
	assert.Contains(t, appErr.Error(), "LOAD_FAILURE")
	assert.Contains(t, appErr.Error(), "cart could not be read")
	assert.Contains(t, appErr.Error(), "database is locked")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "cart line not found"}
	assert.Equal(t, "NOT_FOUND: cart line not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestNew_WrapsCustomSentinel(t *testing.T) {
	errItemMissing := errors.New("item not found")
	err := New("ITEM_NOT_FOUND", http.StatusNotFound, errItemMissing, "no line with id 99")

	require.NotNil(t, err)
	assert.Equal(t, "ITEM_NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, errItemMissing))
}

func TestNotFound(t *testing.T) {
	err := NotFound("cart", "u-1")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "cart with id u-1 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be at least 1")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConflict(t *testing.T) {
	err := Conflict("duplicate product id 7")
	assert.Equal(t, "CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable("cart server unreachable", cause)

	assert.Equal(t, "SERVICE_UNAVAILABLE", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("add item: %w", InvalidInput("quantity must be at least 1"))
	assert.Equal(t, "quantity must be at least 1", UserMessage(wrapped))
	assert.Equal(t, "plain failure", UserMessage(errors.New("plain failure")))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "CONFLICT", Code(fmt.Errorf("save: %w", Conflict("x"))))
	assert.Equal(t, "", Code(errors.New("plain")))
}

// --- HTTPStatus mapping ---

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFound("cart", "1")), http.StatusNotFound},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel invalid", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
