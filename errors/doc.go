// Package errors provides the gateway's structured error type.
//
// An AppError carries a machine-readable code, the HTTP status it maps to,
// a retryable flag and optional details. Request handlers convert any
// error into the response envelope through its Status and Message.
package errors
