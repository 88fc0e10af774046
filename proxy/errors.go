package proxy

import (
	"fmt"
	"net/http"
)

// Error categories shared by every function. Function specific categories
// live next to their handlers.
const (
	CategoryMethodNotAllowed  = "Method not allowed. Use POST."
	CategoryMissingParameters = "Missing required parameters"
	CategoryConfiguration     = "Configuration error"
	CategoryInternal          = "Internal server error"
)

// ErrorEnvelope is the JSON body of every failed request.
type ErrorEnvelope struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError is an error that already knows how it should be presented to the
// caller. Handlers return it for every classified failure; anything else is
// reported as an internal server error.
type HTTPError struct {
	Status   int
	Category string
	Message  string
	Details  interface{}

	cause error
}

// NewHTTPError returns an HTTPError with the given status, category and
// message.
func NewHTTPError(status int, category, message string) *HTTPError {
	return &HTTPError{
		Status:   status,
		Category: category,
		Message:  message,
	}
}

// NewMissingParametersError returns a 400 for absent required fields.
func NewMissingParametersError(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, CategoryMissingParameters, message)
}

// NewConfigurationError returns a 500 for a deployment defect such as an
// unset credential.
func NewConfigurationError(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, CategoryConfiguration, message)
}

// NewInternalError wraps cause into a 500 whose details carry the cause's
// description.
func NewInternalError(message string, cause error) *HTTPError {
	e := NewHTTPError(http.StatusInternalServerError, CategoryInternal, message)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}

	return e
}

// Error satisfies the error interface.
func (e *HTTPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Cause returns the underlying error, if any.
func (e *HTTPError) Cause() error {
	return e.cause
}

// Unwrap returns the underlying error, if any.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// WithDetails returns a copy of e carrying details.
func (e *HTTPError) WithDetails(details interface{}) *HTTPError {
	return &HTTPError{
		Status:   e.Status,
		Category: e.Category,
		Message:  e.Message,
		Details:  details,
		cause:    e.cause,
	}
}

// Envelope returns the body presented to the caller.
func (e *HTTPError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{
		Error:   e.Category,
		Message: e.Message,
		Details: e.Details,
	}
}
