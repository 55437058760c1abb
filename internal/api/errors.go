// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/selector"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewRejectionError maps a selector rejection onto a response.
// The message is the text shown next to the drop target.
func NewRejectionError(rej *selector.Rejection) *APIError {
	status := http.StatusBadRequest
	switch rej.Kind {
	case selector.KindFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	case selector.KindInvalidFormat:
		status = http.StatusUnsupportedMediaType
	}
	return &APIError{
		Status:  status,
		Code:    strings.ToUpper(strings.ReplaceAll(string(rej.Kind), "-", "_")),
		Message: rej.Message(),
		Details: rej.Error(),
	}
}

// ErrorHandler renders every handler error as an APIError.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
		// the body limit middleware answers before the selector sees the file
		if httpErr.Code == http.StatusRequestEntityTooLarge {
			apiErr = NewRejectionError(&selector.Rejection{Kind: selector.KindFileTooLarge})
		}
	default:
		apiErr = NewInternalError("An unexpected error occurred", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}
