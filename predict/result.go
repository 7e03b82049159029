package predict

import (
	"encoding/json"
	"sort"

	"github.com/repronet/predict-gateway/errors"
)

// Result is a backend's JSON answer, passed through untouched.
type Result = json.RawMessage

// BackendError describes one failed backend call. It is the marker placed
// under the backend's key in an aggregate result, and always reports
// status 500 whatever the upstream answered.
type BackendError struct {
	Backend        string           `json:"backend"`
	Status         int              `json:"status"`
	Code           errors.ErrorCode `json:"code"`
	Message        string           `json:"message"`
	UpstreamStatus int              `json:"upstream_status,omitempty"`

	cause error
}

// NewBackendError builds the error for a failed call to backend.
// upstreamStatus is 0 when no HTTP answer was received.
func NewBackendError(backend string, code errors.ErrorCode, upstreamStatus int, cause error) *BackendError {
	appErr := errors.Backend(code, backend, cause)
	return &BackendError{
		Backend:        backend,
		Status:         appErr.HTTPStatus,
		Code:           code,
		Message:        appErr.Message,
		UpstreamStatus: upstreamStatus,
		cause:          cause,
	}
}

func (e *BackendError) Error() string { return e.Message }

func (e *BackendError) Unwrap() error { return e.cause }

// AppError converts the failure into the application error type.
func (e *BackendError) AppError() *errors.AppError {
	appErr := errors.Backend(e.Code, e.Backend, e.cause)
	if e.UpstreamStatus != 0 {
		appErr.WithDetail("upstream_status", e.UpstreamStatus)
	}
	return appErr
}

// Outcome is exactly one of a Result or an error for one backend.
type Outcome struct {
	Result Result
	Err    *BackendError
}

// OK reports whether the backend answered successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// MarshalJSON writes the result as-is, or the error marker on failure.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(o.Err)
	}
	if len(o.Result) == 0 {
		return []byte("null"), nil
	}
	return o.Result, nil
}

// AggregateResult maps backend name to its outcome. It encodes as a JSON
// object with keys in name order.
type AggregateResult map[string]Outcome

// Backends returns the backend names in order.
func (a AggregateResult) Backends() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failed returns the names of backends whose call failed, in order.
func (a AggregateResult) Failed() []string {
	var failed []string
	for _, name := range a.Backends() {
		if !a[name].OK() {
			failed = append(failed, name)
		}
	}
	return failed
}
