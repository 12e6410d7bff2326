package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Provider and availability errors
const (
	// ErrCodeExternalService indicates an error status from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTaskFailed indicates an asynchronous task reported failure.
	ErrCodeTaskFailed ErrorCode = "TASK_FAILED"
	// ErrCodeTimeout indicates an operation ran out of attempts or time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeMissingCredential indicates a required API credential is not configured.
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
)

// Pipeline errors
const (
	// ErrCodeEmptyTranscript indicates the transcript yielded no sentences.
	ErrCodeEmptyTranscript ErrorCode = "EMPTY_TRANSCRIPT"
	// ErrCodeNoSegments indicates segmentation produced nothing to rewrite.
	ErrCodeNoSegments ErrorCode = "NO_SEGMENTS"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorage indicates an artifact could not be read or written.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService:  true,
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeStorage:          true,
	ErrCodeTaskFailed:       false,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// longscribe never retries on its own; the flag tells an operator whether
// rerunning the same command can be expected to help.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
