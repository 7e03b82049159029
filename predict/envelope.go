package predict

import (
	stderrors "errors"
	"net/http"

	"github.com/repronet/predict-gateway/errors"
)

// Envelope is the body of every gateway response. The HTTP status code of
// the response equals Status.
type Envelope struct {
	Data    any    `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK wraps a successful result.
func OK(data any) Envelope {
	return Envelope{Data: data, Status: http.StatusOK}
}

// Fail builds an error envelope with no data.
func Fail(status int, message string) Envelope {
	return Envelope{Status: status, Message: message}
}

// FromError converts any error into an envelope so handlers never branch
// on error types. Unknown errors become a 500 without leaking detail.
func FromError(err error) Envelope {
	var be *BackendError
	if stderrors.As(err, &be) {
		return Fail(be.Status, be.Message)
	}
	if appErr, ok := errors.AsAppError(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return Fail(status, appErr.Message)
	}
	return Fail(http.StatusInternalServerError, errors.Internal(err).Message)
}

// IsSuccess reports a 2xx status.
func (e Envelope) IsSuccess() bool {
	return e.Status >= 200 && e.Status < 300
}
