// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/serve-folder/backend/internal/fsutil"
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

// NewInvalidPathError creates a 400 error for traversal/escape attempts
func NewInvalidPathError(cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_PATH",
		Message: "path is outside the served directory or malformed",
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewAccessDeniedError creates a 403 error for an unreadable root
func NewAccessDeniedError(path string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Code:    "ACCESS_DENIED",
		Message: fmt.Sprintf("cannot read: %s", path),
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

// pathError maps resolver failures onto the API error taxonomy.
func pathError(rel string, err error) *APIError {
	switch {
	case errors.Is(err, fsutil.ErrInvalidPath):
		return NewInvalidPathError(err)
	case errors.Is(err, fsutil.ErrNotFound), os.IsNotExist(err):
		return NewNotFoundError("path", rel)
	case os.IsPermission(err):
		return NewAccessDeniedError(rel)
	default:
		return NewInternalError("failed to resolve path", err)
	}
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
