// Package backend calls the inference services behind the gateway.
//
// A Client is bound to one Endpoint and sends either a single-input GET
// or a batch POST, depending on the request mode:
//
//	GET  <base_url>/<path>?input=..&language=..&beam=..
//	POST <base_url>/<path>   {"batch": [...], "language": "..", "beam": N}
//
// Every failure is returned as a *predict.BackendError; Predict never panics
// on transport errors or upstream status codes.
package backend
