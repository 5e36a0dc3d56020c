package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/shubhamchoudhary-2003/fullstack/pkg/errors"
)

const maxErrorBody = 1 << 20

// statusErrors maps downstream 4xx/503 answers onto local AppErrors.
var statusErrors = map[int]func(string) *apperrors.AppError{
	http.StatusBadRequest:         apperrors.InvalidInput,
	http.StatusUnauthorized:       apperrors.Unauthorized,
	http.StatusForbidden:          apperrors.Forbidden,
	http.StatusConflict:           apperrors.Conflict,
	http.StatusServiceUnavailable: apperrors.ServiceUnavailable,
}

// ParseResponseError consumes and closes the body of a non-2xx response from
// service. A body of the form {"code","message"} becomes an AppError for
// client errors; anything else becomes a plain error carrying the status.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s: status %d: read body: %w", service, resp.StatusCode, err)
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) != nil || body.Message == "" {
		return fmt.Errorf("%s: status %d: %s", service, resp.StatusCode, raw)
	}

	msg := service + ": " + body.Message
	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return apperrors.NotFound(service, body.Message)
	case statusErrors[status] != nil:
		return statusErrors[status](msg)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: status %d (%s): %s", service, status, body.Code, body.Message)
	default:
		return &apperrors.AppError{Code: body.Code, Message: msg, Status: status}
	}
}
