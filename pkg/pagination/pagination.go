// Package pagination provides page/limit extraction from requests and
// the response metadata envelope shared by all list endpoints.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page and limit query parameters from the echo
// context. Out-of-range values are clamped to defaults rather than
// rejected.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = DefaultPage
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for SQL queries.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewMeta builds pagination metadata for a result set of total rows.
func NewMeta(total int, p Params) Meta {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return Meta{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}

// Response wraps a paginated API response.
type Response struct {
	Data       any  `json:"data"`
	Pagination Meta `json:"pagination"`
}

func NewResponse(data any, total int, p Params) *Response {
	return &Response{Data: data, Pagination: NewMeta(total, p)}
}
