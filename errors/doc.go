// Package errors provides the structured error type shared by apiwrap
// packages. It carries machine-readable codes, HTTP status mapping for API
// responses, and retryable detection.
package errors
