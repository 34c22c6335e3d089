package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type for reminder operations.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the reminder does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodePermissionDenied indicates the user refused notification permission.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeNotEntitled indicates the feature needs a Pro purchase.
	ErrCodeNotEntitled ErrorCode = "NOT_ENTITLED"
	// ErrCodePersistenceFailed indicates the store rejected a write.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeAlertRegistrationFailed indicates alerts could not be registered.
	ErrCodeAlertRegistrationFailed ErrorCode = "ALERT_REGISTRATION_FAILED"
	// ErrCodeUnavailable indicates a collaborator is not available.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// Error represents a structured error for reminder operations.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *Error) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(what string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", what)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *Error {
	return &Error{Code: ErrCodePermissionDenied, Message: msg}
}

// NotEntitled creates a not entitled error.
func NotEntitled(msg string) *Error {
	return &Error{Code: ErrCodeNotEntitled, Message: msg}
}

// PersistenceFailed creates a persistence error.
func PersistenceFailed(msg string, cause error) *Error {
	return &Error{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

// AlertRegistrationFailed creates an alert registration error.
func AlertRegistrationFailed(msg string, cause error) *Error {
	return &Error{Code: ErrCodeAlertRegistrationFailed, Message: msg, Cause: cause}
}

// Unavailable creates an unavailable error.
func Unavailable(msg string, cause error) *Error {
	return &Error{Code: ErrCodeUnavailable, Message: msg, Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *Error {
	return &Error{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an *Error.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return defaultCode
}

// Retryable reports whether the user can usefully try the same action again.
func Retryable(err error) bool {
	switch GetCodeFromError(err, "") {
	case ErrCodePersistenceFailed, ErrCodeAlertRegistrationFailed, ErrCodeUnavailable, ErrCodeRateLimitExceeded:
		return true
	default:
		return false
	}
}

// HTTPStatus maps an error to the status the API responds with.
func HTTPStatus(err error) int {
	switch GetCodeFromError(err, "") {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeNotEntitled:
		return http.StatusPaymentRequired
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
