package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/predict"
)

// DefaultMaxBodySize is the request body limit when none is configured.
const DefaultMaxBodySize = 20 * 1024 * 1024

// BodySizeLimit caps request bodies at maxSize (e.g. "20MB", "512KB").
// A declared Content-Length over the limit is refused with a 413 envelope
// up front; otherwise reads past the limit fail with *http.MaxBytesError,
// which handlers detect with IsBodyTooLarge.
func BodySizeLimit(maxSize string) Middleware {
	limit := ParseSize(maxSize, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				WriteEnvelope(w, predict.FromError(errors.PayloadTooLarge(limit)))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit.
// It returns the limit when it did.
func IsBodyTooLarge(err error) (int64, bool) {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return mbe.Limit, true
	}
	return 0, false
}

// ParseSize converts "10MB", "512KB", "1GB" or a plain byte count to bytes.
// Unparseable input yields defaultBytes.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	for _, u := range []struct {
		suffix string
		factor int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(s, u.suffix) {
			multiplier = u.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil || val <= 0 {
		return defaultBytes
	}
	return val * multiplier
}
