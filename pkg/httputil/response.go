package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/logger"
	"github.com/xmenbro/AutoRepairCenter/pkg/validator"
)

// ErrorResponse is the failure body of POST /cart and of routes without a
// route-specific contract: {"status":"error","message":...}.
type ErrorResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// FailureResponse is the failure body of POST /cart/save: {"success":false,"message":...}.
type FailureResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Problem is the transport-neutral description of an error.
type Problem struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// Resolve maps err to a Problem. Validation errors keep their field map;
// AppErrors keep their code and status; anything else is an internal error
// and is logged with the request-scoped logger (or fallback).
func Resolve(r *http.Request, err error, fallback *slog.Logger) Problem {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return Problem{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: valErr.Error(),
			Fields:  valErr.Fields(),
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return Problem{Status: appErr.Status, Code: appErr.Code, Message: appErr.Message}
	}

	p := Problem{
		Status:  apperrors.HTTPStatus(err),
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		p.Code, p.Message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		p.Code, p.Message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrServiceUnavail):
		p.Code, p.Message = "SERVICE_UNAVAILABLE", "storage temporarily unavailable"
	}

	if p.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	return p
}

// WriteError writes err in the {"status":"error"} shape.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	p := Resolve(r, err, fallback)
	WriteJSON(w, p.Status, ErrorResponse{
		Status:    "error",
		Message:   p.Message,
		Code:      p.Code,
		Fields:    p.Fields,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}

// WriteFailure writes err in the {"success":false} shape.
func WriteFailure(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	p := Resolve(r, err, fallback)
	WriteJSON(w, p.Status, FailureResponse{
		Success:   false,
		Message:   p.Message,
		Code:      p.Code,
		Fields:    p.Fields,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}
