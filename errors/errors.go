package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if rerunning the operation may succeed.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Input errors ---

// InvalidInput creates a new AppError for invalid caller input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for configuration validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// MissingCredential creates a new AppError for an unset API credential.
func MissingCredential(envVar string) *AppError {
	return &AppError{
		Code: ErrCodeMissingCredential, Message: fmt.Sprintf("Missing %s", envVar),
		Details: map[string]any{"env": envVar},
	}
}

// --- Provider errors ---

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service returned an error.", service),
		Retryable: true, Details: map[string]any{"service": service}, Cause: cause,
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", service),
		Retryable: true, Details: map[string]any{"service": service}, Cause: cause,
	}
}

// TaskFailed creates a new AppError for an asynchronous task that reported failure.
func TaskFailed(service, taskID, reason string) *AppError {
	if reason == "" {
		reason = "task failed"
	}
	return &AppError{
		Code: ErrCodeTaskFailed, Message: fmt.Sprintf("%s task %s failed: %s", service, taskID, reason),
		Details: map[string]any{"service": service, "task_id": taskID},
	}
}

// Timeout creates a new AppError for an operation that exhausted its attempts.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out.", operation),
		Retryable: true, Details: map[string]any{"operation": operation},
	}
}

// --- Pipeline errors ---

// EmptyTranscript creates a new AppError for a transcript with no usable text.
func EmptyTranscript() *AppError {
	return &AppError{Code: ErrCodeEmptyTranscript, Message: "No transcript segments produced: the transcript has no usable text"}
}

// NoSegments creates a new AppError for a run where segmentation produced nothing.
func NoSegments() *AppError {
	return &AppError{Code: ErrCodeNoSegments, Message: "No transcript segments produced"}
}

// --- Internal errors ---

// StorageError creates a new AppError for a failed artifact read or write.
func StorageError(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Unable to access %s.", path),
		Retryable: true, Details: map[string]any{"path": path}, Cause: cause,
	}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
