// Package component defines the lifecycle interface for the pieces the
// gateway starts and stops: the HTTP server, the backend pool and the
// telemetry providers. A Registry starts them in registration order and
// stops them in reverse.
package component
