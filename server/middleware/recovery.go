package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/predict"
)

// Recovery turns a handler panic into a 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", logger.Fields(
					"error", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				))
				WriteEnvelope(w, predict.FromError(errors.Internal(fmt.Errorf("panic: %v", rec))))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
