package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// kind ties a sentinel to the code and status it is reported with.
type kind struct {
	sentinel error
	code     string
	status   int
	message  string
}

// Ordered: the first sentinel found in an error chain wins.
var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound, "Resource not found"},
	{ErrAlreadyExists, "ALREADY_EXISTS", http.StatusConflict, "Resource already exists"},
	{ErrConflict, "CONFLICT", http.StatusConflict, "Conflict"},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest, ""},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized, "Unauthorized"},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden, "Forbidden"},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "Service unavailable"},
}

func lookup(sentinel error) kind {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return k
		}
	}
	panic("errors: unregistered sentinel " + sentinel.Error())
}

// AppError is an error with a client-facing code and message and the HTTP
// status to answer with. Err stays server side.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(sentinel error, message string, cause error) *AppError {
	k := lookup(sentinel)
	if cause == nil {
		cause = sentinel
	}
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: cause}
}

// NotFound reports "<Resource> not found" to the client and keeps the id on
// the wrapped error for logs.
func NotFound(resource, id string) *AppError {
	return newAppError(ErrNotFound,
		upperFirst(resource)+" not found",
		fmt.Errorf("%s %s: %w", resource, id, ErrNotFound))
}

func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(ErrAlreadyExists,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value), nil)
}

func InvalidInput(message string) *AppError {
	return newAppError(ErrInvalidInput, message, nil)
}

func Unauthorized(message string) *AppError {
	return newAppError(ErrUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return newAppError(ErrForbidden, message, nil)
}

// Conflict is for state conflicts other than duplicates, such as restoring a
// record that was never deleted.
func Conflict(message string) *AppError {
	return newAppError(ErrConflict, message, nil)
}

func ServiceUnavailable(message string) *AppError {
	return newAppError(ErrServiceUnavail, message, nil)
}

// Describe classifies err by the first sentinel in its chain. Unknown errors
// map to 500 INTERNAL_ERROR. Invalid input is reported with err's own text.
func Describe(err error) (code string, status int, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Status, appErr.Message
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			if k.message == "" {
				return k.code, k.status, err.Error()
			}
			return k.code, k.status, k.message
		}
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError, "Internal server error"
}

// HTTPStatus returns the status Describe would report for err.
func HTTPStatus(err error) int {
	_, status, _ := Describe(err)
	return status
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
