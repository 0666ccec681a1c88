// Package respond renders the API's success envelope.
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmd/pharmd/pkg/pagination"
)

type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Meta       any              `json:"meta,omitempty"`
}

func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// Message is for operations with no payload, like deletes.
func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

func List(c echo.Context, message string, data any, meta pagination.Meta) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &meta})
}

// ListWithMeta adds an endpoint-specific meta block alongside pagination.
func ListWithMeta(c echo.Context, message string, data any, pg pagination.Meta, meta any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &pg, Meta: meta})
}
