// Package server runs the gateway's HTTP listener: a gin engine behind a
// middleware stack, served over HTTP/1.1 and cleartext HTTP/2 (h2c).
//
// The stack, outermost first:
//
//   - Recovery: panics become a 500 envelope
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: all origins, GET/POST and OPTIONS preflight by default
//   - BodySizeLimit: 20MB by default, 413 envelope past it
//   - RequestLogger: one line per request, level by status class
//
// /health and /info are registered by RegisterDefaultEndpoints.
package server
