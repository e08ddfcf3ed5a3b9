// Package errors defines the gateway's error taxonomy. Every failure that
// crosses a layer boundary (validator, broker, adapter, service) is a
// ServiceError so the HTTP layer can map it to a status code exhaustively.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error category.
type ErrorCode string

const (
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeAccessDenied      ErrorCode = "ACCESS_DENIED"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	CodeSourceTimeout     ErrorCode = "SOURCE_TIMEOUT"
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeRateLimited       ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries an error category, a user-facing message, the HTTP
// status the boundary should render, and optional structured details.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// Is treats two ServiceErrors with the same code as equivalent.
func (e *ServiceError) Is(target error) bool {
	var se *ServiceError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// WithDetails returns the error with an extra key/value detail attached.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *ServiceError) WithCause(err error) *ServiceError {
	e.cause = err
	return e
}

func newError(code ErrorCode, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

// Unauthorized indicates invalid, expired or wrong-type credentials.
func Unauthorized(detail string) *ServiceError {
	if detail == "" {
		detail = "Unauthorized. Provided credentials or token have expired or invalid."
	}
	return newError(CodeUnauthorized, detail, http.StatusUnauthorized)
}

// AccessDenied indicates a valid token with insufficient roles.
func AccessDenied(detail string) *ServiceError {
	if detail == "" {
		detail = "Access denied."
	}
	return newError(CodeAccessDenied, detail, http.StatusForbidden)
}

// NotFound indicates the backend reported a missing resource.
func NotFound(detail string) *ServiceError {
	if detail == "" {
		detail = "Not found."
	}
	return newError(CodeNotFound, detail, http.StatusNotFound)
}

// Conflict indicates the backend reported a uniqueness violation.
func Conflict(detail string) *ServiceError {
	if detail == "" {
		detail = "Conflict."
	}
	return newError(CodeConflict, detail, http.StatusConflict)
}

// SourceUnavailable indicates the broker transport could not be reached.
func SourceUnavailable(detail string) *ServiceError {
	if detail == "" {
		detail = "Source is not available."
	}
	return newError(CodeSourceUnavailable, detail, http.StatusServiceUnavailable)
}

// SourceTimeout indicates no reply arrived within the call deadline.
func SourceTimeout(detail string) *ServiceError {
	if detail == "" {
		detail = "Source timeout exceeded."
	}
	return newError(CodeSourceTimeout, detail, http.StatusGatewayTimeout)
}

// Validation indicates a request DTO failed its invariants.
func Validation(detail string) *ServiceError {
	if detail == "" {
		detail = "Invalid request payload."
	}
	return newError(CodeValidation, detail, http.StatusBadRequest)
}

// RateLimitExceeded indicates the client exceeded its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(CodeRateLimited, "Rate limit exceeded.", http.StatusTooManyRequests).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

// Internal wraps any failure that does not fit the taxonomy.
func Internal(message string, cause error) *ServiceError {
	if message == "" {
		message = "Unknown error occurred."
	}
	return newError(CodeInternal, message, http.StatusInternalServerError).WithCause(cause)
}

// InvalidToken is the Unauthorized variant raised by token parsing.
func InvalidToken(cause error) *ServiceError {
	return Unauthorized("Invalid or expired token.").WithCause(cause)
}

// GetServiceError extracts a ServiceError from err, or nil if there is none
// anywhere in the chain.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
