package response

import (
	"net/http"

	"OCLAdmin/pkg/pagination"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Code       string           `json:"code,omitempty"`
	Details    []string         `json:"details,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Search     *string          `json:"search,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Message(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Paged writes a list page. search is echoed back only by routes that take one.
func Paged(c echo.Context, data interface{}, meta pagination.Meta, search *string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &meta, Search: search})
}
