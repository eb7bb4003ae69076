package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried by APIError and exposed as the error_code problem extension.
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// APIError is an error raised by a handler that already knows its HTTP status.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// InvalidParameter reports a malformed query or path parameter
func InvalidParameter(name, reason string) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("invalid %s: %s", name, reason))
	e.Details = map[string]string{"parameter": name}
	return e
}

// RateLimited is returned once a client exceeds the request budget
func RateLimited() *APIError {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded, retry shortly")
}
