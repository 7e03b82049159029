package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Request errors
const (
	// ErrCodeInvalidInput indicates a request field violates a validation rule.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUndefinedModel indicates a model selector no route exists for.
	ErrCodeUndefinedModel ErrorCode = "UNDEFINED_MODEL"
	// ErrCodePayloadTooLarge indicates the request body exceeded the size limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Backend errors (retryable unless noted)
const (
	// ErrCodeBackendTimeout indicates a backend call timed out or was cancelled.
	ErrCodeBackendTimeout ErrorCode = "BACKEND_TIMEOUT"
	// ErrCodeBackendUnavailable indicates a backend could not be reached.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// ErrCodeBackendRejected indicates a backend answered with a 4xx status.
	ErrCodeBackendRejected ErrorCode = "BACKEND_REJECTED"
	// ErrCodeBackendError indicates a backend answered with a 5xx status.
	ErrCodeBackendError ErrorCode = "BACKEND_ERROR"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeNoBackends indicates the aggregate call had nothing to fan out to.
	ErrCodeNoBackends ErrorCode = "NO_BACKENDS"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackendTimeout:     true,
	ErrCodeBackendUnavailable: true,
	ErrCodeBackendError:       true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
