package pagination

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// PageSize is the fixed number of rows returned per page by list endpoints.
const PageSize = 20

// MaxPage is the largest page whose offset still fits in an int.
const MaxPage = math.MaxInt / PageSize

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page.
func DefaultParams() Params {
	return NewParams(1)
}

// NewParams returns the parameters for the given 1-based page.
func NewParams(page int) Params {
	page = min(max(page, 1), MaxPage)
	return Params{
		Page:    page,
		PerPage: PageSize,
		Offset:  PageSize * (page - 1),
	}
}

// FromRequest extracts the page number from the "page" query parameter.
// A missing value means page 1; a value that is not an integer between 1 and
// MaxPage is rejected with a *validator.ValidationError.
func FromRequest(r *http.Request) (Params, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return DefaultParams(), nil
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		return Params{}, validator.NewValidationError("page", "must be an integer")
	}
	if page < 1 {
		return Params{}, validator.NewValidationError("page", "must be greater than or equal to 1")
	}
	if page > MaxPage {
		return Params{}, validator.NewValidationError("page", "must be less than or equal to "+strconv.Itoa(MaxPage))
	}
	return NewParams(page), nil
}

// LastPage returns ceil(count / perPage). Zero rows means zero pages.
func LastPage(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 0
	}
	pages := count / perPage
	if count%perPage > 0 {
		pages++
	}
	return pages
}

// Meta is embedded in list responses next to the resource slice.
type Meta struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
}

// NewMeta builds the response metadata for a page of a result set of count rows.
func NewMeta(count int, params Params) Meta {
	return Meta{
		Count:    count,
		Page:     params.Page,
		LastPage: LastPage(count, params.PerPage),
	}
}
