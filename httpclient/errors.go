package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode tells a backend failure apart from the others. The backend
// client maps each code onto a gateway error code.
type ErrorCode int

const (
	ErrCodeTimeout    ErrorCode = iota // attempt ran past its deadline
	ErrCodeConnection                  // refused, DNS, reset
	ErrCodeCanceled                    // caller went away
	ErrCodeRateLimit                   // 429
	ErrCodeRejected                    // other 4xx
	ErrCodeServer                      // 5xx and unexpected statuses
	ErrCodeValidation                  // request could not be built
)

var codeNames = [...]string{
	ErrCodeTimeout:    "timeout",
	ErrCodeConnection: "connection",
	ErrCodeCanceled:   "canceled",
	ErrCodeRateLimit:  "rate_limit",
	ErrCodeRejected:   "rejected",
	ErrCodeServer:     "server",
	ErrCodeValidation: "validation",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "unknown"
	}
	return codeNames[c]
}

// Error is returned by Adapter.Do for every failed call. StatusCode is 0
// when no response arrived.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapTransport(code ErrorCode, retryable bool, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: retryable, Err: err}
}

// NewTimeoutError wraps a per-attempt deadline failure. It is retryable.
func NewTimeoutError(err error) *Error { return wrapTransport(ErrCodeTimeout, true, err) }

// NewConnectionError wraps a dial or read failure. It is retryable.
func NewConnectionError(err error) *Error { return wrapTransport(ErrCodeConnection, true, err) }

// NewCanceledError wraps a cancellation of the caller's context.
func NewCanceledError(err error) *Error { return wrapTransport(ErrCodeCanceled, false, err) }

// NewValidationError reports a request the adapter refused to send.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode returns nil for a 2xx status and a typed error for
// anything else. 429 and 5xx are retryable.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	e := &Error{
		StatusCode: statusCode,
		Code:       ErrCodeServer,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Body:       body,
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeRejected
	case statusCode >= 500:
		e.Retryable = true
	}
	return e
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func hasCode(err error, code ErrorCode) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

func IsTimeout(err error) bool     { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool  { return hasCode(err, ErrCodeConnection) }
func IsCanceled(err error) bool    { return hasCode(err, ErrCodeCanceled) }
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

// IsRetryable reports whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	e, ok := asError(err)
	return ok && e.Retryable
}

// StatusCodeOf returns the upstream status carried by err, or 0.
func StatusCodeOf(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}
