package middleware

import (
	"net/http"
	"time"

	"github.com/repronet/predict-gateway/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger logs every request with method, path, status, size and
// duration, at a level chosen by status class. Health and info probes are
// not logged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.size,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			logByStatus(log.WithContext(r.Context()), fields, rec.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}

// responseRecorder keeps the first status written and counts body bytes.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	size    int
	latched bool
}

func (rw *responseRecorder) WriteHeader(code int) {
	if !rw.latched {
		rw.status, rw.latched = code, true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.latched = true
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Unwrap exposes the wrapped writer to http.ResponseController, which
// covers flushing.
func (rw *responseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
