package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnectionFailed indicates a failed connection to the API.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// API response errors
const (
	// ErrCodeBadRequest indicates the API rejected the request (400).
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrCodeUnauthorized indicates invalid or expired credentials (401).
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates access to the resource was denied (403).
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeNotFound indicates the requested resource was not found (404).
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRateLimited indicates the client is rate limited (429).
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeClientError indicates any other 4xx response.
	ErrCodeClientError ErrorCode = "CLIENT_ERROR"
	// ErrCodeServerError indicates a 5xx response.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ErrCodeInternal indicates an unexpected failure inside the library.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:          true,
	ErrCodeConnectionFailed: true,
	ErrCodeRateLimited:      true,
	ErrCodeServerError:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// FromHTTPStatus classifies an HTTP status code. It returns an empty code
// for statuses below 400.
func FromHTTPStatus(status int) ErrorCode {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusBadRequest:
		return ErrCodeBadRequest
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status < http.StatusInternalServerError:
		return ErrCodeClientError
	default:
		return ErrCodeServerError
	}
}

// IsClientCode reports whether code classifies a 4xx response.
func IsClientCode(code ErrorCode) bool {
	switch code {
	case ErrCodeBadRequest, ErrCodeUnauthorized, ErrCodeForbidden,
		ErrCodeNotFound, ErrCodeRateLimited, ErrCodeClientError:
		return true
	}
	return false
}
