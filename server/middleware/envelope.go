package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/repronet/predict-gateway/predict"
)

// WriteEnvelope writes env as JSON with its status as the HTTP status.
func WriteEnvelope(w http.ResponseWriter, env predict.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}
