// Package common contains constants and sentinel errors shared by the
// client packages.
package common

// RequestIDHeaderName carries the per-request correlation id on every
// outbound API call.
const RequestIDHeaderName = "X-Request-ID"
