package http

import (
	"net/http"
	"strings"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/pagination"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// listQuery holds the query parameters shared by the list endpoints.
type listQuery struct {
	Page    pagination.Params
	Deleted bool
}

// parseListQuery reads "page" and "deleted". Invalid values are reported as a
// *validator.ValidationError.
func parseListQuery(r *http.Request) (listQuery, error) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		return listQuery{}, err
	}
	deleted, err := parseBool(r.URL.Query().Get("deleted"))
	if err != nil {
		return listQuery{}, validator.NewValidationError("deleted", "must be a boolean")
	}
	return listQuery{Page: page, Deleted: deleted}, nil
}

// parseBool accepts true/false/1/0 in any case. Empty means false.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, validator.NewValidationError("value", "must be a boolean")
	}
}

// requireParam returns the trimmed path parameter or a validation error
// naming it.
func requireParam(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", validator.NewValidationError(field, "is required")
	}
	return value, nil
}

// deleteResponse acknowledges a soft delete.
type deleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
