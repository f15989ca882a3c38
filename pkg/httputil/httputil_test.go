package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/logger"
	"github.com/xmenbro/AutoRepairCenter/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

// --- WriteError ---

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)

	WriteError(rec, req, apperrors.InvalidInput("userId is required"), testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "userId is required", resp.Message)
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)

	WriteError(rec, req, fmt.Errorf("redis get cart: i/o timeout"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "an internal error occurred", resp.Message)
	assert.NotContains(t, rec.Body.String(), "i/o timeout")
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)

	WriteError(rec, req, fmt.Errorf("load: %w", apperrors.ErrServiceUnavail), testLogger())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-1"))

	WriteError(rec, req, apperrors.NotFound("cart", "7"), testLogger())

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "corr-1", resp.RequestID)
}

// --- WriteFailure ---

type saveBody struct {
	UserID string `json:"userId" validate:"required"`
}

func TestWriteFailure_ValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/save", nil)

	err := validator.Validate(saveBody{})
	WriteFailure(rec, req, err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp FailureResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "is required", resp.Fields["userId"])
}

func TestWriteFailure_EncodesSuccessFalse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/save", nil)

	WriteFailure(rec, req, apperrors.InvalidInput("bad cart"), testLogger())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, "bad cart", raw["message"])
}
