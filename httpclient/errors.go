package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/longscribe/errors"
)

const snippetRunes = 300

// StatusError is returned with the Response when a service answers with a
// non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if s := snippet(e.Body); s != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, s)
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is worth retrying by the caller.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports a 404 answer.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConnection reports a request that never got an answer.
func IsConnection(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed)
}

// ServiceError maps err onto the application taxonomy. AppErrors pass
// through; status errors become EXTERNAL_SERVICE_ERROR carrying the status,
// retryable only for 429 and 5xx.
func ServiceError(service string, err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	appErr := apperrors.ExternalServiceError(service, err)
	var se *StatusError
	if errors.As(err, &se) {
		appErr.WithDetail("status", se.StatusCode)
		appErr.Retryable = se.Retryable()
	}
	return appErr
}

func snippet(body []byte) string {
	r := []rune(string(body))
	if len(r) > snippetRunes {
		return string(r[:snippetRunes]) + "..."
	}
	return string(r)
}
