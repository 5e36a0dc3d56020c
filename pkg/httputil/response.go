package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// Messages used for 400 responses. Handlers pick the one matching the part of
// the request that failed.
const (
	MsgInvalidQuery  = "Invalid query parameters"
	MsgInvalidParams = "Invalid request parameters"
	MsgInvalidBody   = "Invalid request body"
	MsgInvalidData   = "Invalid request data"
	MsgInvalidJSON   = "Invalid JSON in request body"
	MsgBodyTooLarge  = "Request body too large"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Error     string                 `json:"error,omitempty"`
	Errors    []validator.FieldError `json:"errors,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized error response based on the error type.
// It prefers the request-scoped logger from context (set by the RequestLogger
// middleware) over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, r, MsgInvalidData, err)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		resp := ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID}
		if appErr.Err != nil && appErr.Status == http.StatusNotFound {
			resp.Error = appErr.Err.Error()
		}
		WriteJSON(w, appErr.Status, resp)
		return
	}

	code, status, message := apperrors.Describe(err)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	resp := ErrorResponse{Code: code, Message: message, RequestID: requestID}
	if status >= http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	WriteJSON(w, status, resp)
}

// WriteValidationError writes a 400 response. Field-level failures from the
// validator package are listed under "errors"; any other error is reported as
// a single message. An oversized body is answered with 413.
func WriteValidationError(w http.ResponseWriter, r *http.Request, message string, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   message,
			Errors:    valErr.Errors,
			RequestID: requestID,
		})
		return
	}

	if errors.Is(err, ErrBodyTooLarge) {
		WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Code:      "PAYLOAD_TOO_LARGE",
			Message:   MsgBodyTooLarge,
			Error:     err.Error(),
			RequestID: requestID,
		})
		return
	}
	if errors.Is(err, ErrInvalidBody) {
		message = MsgInvalidJSON
	}
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:      "INVALID_INPUT",
		Message:   message,
		Error:     err.Error(),
		RequestID: requestID,
	})
}
