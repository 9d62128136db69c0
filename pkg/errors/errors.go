// Package errors provides the closed error taxonomy for the client: API
// errors parsed from the backend envelope, transport-level network errors,
// and local validation errors that never cross the wire.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error codes
const (
	ErrCodeNetwork           = "NETWORK_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeContractViolation = "CONTRACT_VIOLATION"
)

// APIError is a non-2xx response whose body parsed as the structured error
// envelope. Code is an opaque backend-defined string used for branching.
type APIError struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%d] %s: %s (%s)", e.Status, e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("[%d] %s: %s", e.Status, e.Code, e.Message)
}

// NewAPIError creates an APIError from a parsed envelope.
func NewAPIError(status int, code, message string, details []string) *APIError {
	return &APIError{Status: status, Code: code, Message: message, Details: details}
}

// NetworkError is a transport failure or a non-2xx response whose body could
// not be parsed as the error envelope.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError wraps a transport failure.
func NewNetworkError(message string, err error) *NetworkError {
	return &NetworkError{Message: message, Err: err}
}

// ValidationError is a client-side input failure, surfaced immediately in the
// originating view and never sent over the wire.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewContractError flags a backend response that violates a documented
// invariant, e.g. a discount breakdown that does not sum.
func NewContractError(message string) *APIError {
	return &APIError{Status: 200, Code: ErrCodeContractViolation, Message: message}
}

// AsAPIError unwraps err to an APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an APIError signalling an unknown
// resource, e.g. a coverage lookup for an address the backend does not know.
func IsNotFound(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Code == ErrCodeNotFound || apiErr.Status == 404
	}
	return false
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return stderrors.As(err, &netErr)
}
