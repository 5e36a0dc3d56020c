package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "mat_1"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"mat_1"}`, rec.Body.String())
}

// --- WriteError ---

func TestWriteError_NotFoundAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, apperrors.NotFound("material", "abc-123"), testLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.Equal(t, "Material not found", resp.Message)
	assert.Contains(t, resp.Error, "abc-123")
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{apperrors.ErrServiceUnavail, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			WriteError(rec, req, fmt.Errorf("wrapped: %w", tt.err), testLogger())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestWriteError_UnknownError_Returns500WithDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, fmt.Errorf("connection refused"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
	assert.Equal(t, "Internal server error", resp.Message)
	assert.Equal(t, "connection refused", resp.Error)
}

func TestWriteError_ValidationErrorBecomes400(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)

	WriteError(rec, req, validator.NewValidationError("name", "is required"), testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "name", resp.Errors[0].Field)
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

	WriteError(rec, req, apperrors.ErrNotFound, testLogger())

	assert.Equal(t, "corr-123", decodeError(t, rec).RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, apperrors.ErrNotFound, testLogger())

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	_, hasRequestID := raw["request_id"]
	assert.False(t, hasRequestID)
}

// --- WriteValidationError ---

func TestWriteValidationError_FieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteValidationError(rec, req, MsgInvalidQuery, validator.NewValidationError("page", "must be at least 1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Invalid query parameters", resp.Message)
	assert.Equal(t, []validator.FieldError{{Field: "page", Message: "must be at least 1"}}, resp.Errors)
}

func TestWriteValidationError_InvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)

	WriteValidationError(rec, req, MsgInvalidBody, fmt.Errorf("%w: unexpected end", ErrInvalidBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON in request body", decodeError(t, rec).Message)
}

func TestWriteValidationError_BodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)

	WriteValidationError(rec, req, MsgInvalidBody, fmt.Errorf("%w: limit is 1048576 bytes", ErrBodyTooLarge))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Code)
	assert.Equal(t, "Request body too large", resp.Message)
}

// --- ReadObject / DecodeBody ---

func TestReadObject_JSONObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Linen"}`))
	req.Header.Set("Content-Type", "application/json")

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Linen"}, obj)
}

func TestReadObject_JSONStringLiteral(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"{\"name\":\"Linen\"}"`))

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Equal(t, "Linen", obj["name"])
}

func TestReadObject_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Empty(t, obj)
}

func TestReadObject_Malformed(t *testing.T) {
	bodies := []string{`{name:`, `"not json"`, `[1,2]`, `42`, `"[1]"`}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			_, err := ReadObject(req)
			assert.ErrorIs(t, err, ErrInvalidBody)
		})
	}
}

func TestReadObject_URLEncodedForm(t *testing.T) {
	form := url.Values{}
	form.Set("description", "Summer linen")
	form.Set("image", `{"id":"img_1","url":"https://cdn.example.com/a.jpg"}`)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Equal(t, "Summer linen", obj["description"])
	assert.Equal(t, map[string]any{"id": "img_1", "url": "https://cdn.example.com/a.jpg"}, obj["image"])
}

func TestReadObject_MultipartForm(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Wool"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Equal(t, "Wool", obj["name"])
}

func TestReadObject_BodyTooLarge(t *testing.T) {
	big := strings.Repeat("x", MaxBodyBytes)

	var multi bytes.Buffer
	mw := multipart.NewWriter(&multi)
	require.NoError(t, mw.WriteField("name", big))
	require.NoError(t, mw.Close())

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"json", `{"name":"` + big + `"}`, "application/json"},
		{"json string literal", `"{\"name\":\"` + big + `\"}"`, ""},
		{"url encoded", "name=" + big, "application/x-www-form-urlencoded"},
		{"multipart", multi.String(), mw.FormDataContentType()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			_, err := ReadObject(req)

			assert.ErrorIs(t, err, ErrBodyTooLarge)
		})
	}
}

func TestReadObject_JustUnderLimit(t *testing.T) {
	name := strings.Repeat("x", MaxBodyBytes-len(`{"name":""}`))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+name+`"}`))

	obj, err := ReadObject(req)

	require.NoError(t, err)
	assert.Len(t, obj["name"], len(name))
}

func TestDecodeBody_TypeMismatchIsValidationError(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":5}`))

	err := DecodeBody(req, &dst)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "name", valErr.Errors[0].Field)
	assert.Contains(t, valErr.Errors[0].Message, "string")
}
