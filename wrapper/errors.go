package wrapper

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/apiwrap/errors"
)

var (
	// ErrUnknownName is returned when a name matches neither the client's
	// data nor the resource mapping.
	ErrUnknownName = errors.New("apiwrap: unknown name")
	// ErrMissingURLParam is returned when a URL template placeholder has no value.
	ErrMissingURLParam = errors.New("apiwrap: missing url parameter")
	// ErrNoResponse is returned when an executor was not produced by a request.
	ErrNoResponse = errors.New("apiwrap: no response")
	// ErrNoSerializer is returned by native conversions without a serializer.
	ErrNoSerializer = errors.New("apiwrap: no serializer configured")
	// ErrNoResource is returned when docs are requested outside a resource.
	ErrNoResource = errors.New("apiwrap: not a resource")
)

// ProcessError is returned by Adapter.ProcessResponse to reject a response.
// The executor turns it into a *ResponseError.
type ProcessError struct {
	// Code classifies the failure, usually errors.FromHTTPStatus(status).
	Code apperrors.ErrorCode
	// Data is the decoded error body, if any.
	Data any
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("response rejected: %s", e.Code)
}

// ResponseError is a rejected API response.
type ResponseError struct {
	Code       apperrors.ErrorCode
	StatusCode int
	Message    string
	// Client wraps the error data, response and request options.
	Client *Client
	Cause  error
}

func newResponseError(pe *ProcessError, status int, message string, client *Client) *ResponseError {
	if message == "" {
		message = fmt.Sprintf("response status code: %d", status)
	}
	code := pe.Code
	if code == "" {
		code = apperrors.FromHTTPStatus(status)
	}
	return &ResponseError{
		Code:       code,
		StatusCode: status,
		Message:    message,
		Client:     client,
		Cause:      pe,
	}
}

// Error returns the string representation of the error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ResponseError) Unwrap() error { return e.Cause }

// ToAppError converts the error to an errors.AppError.
func (e *ResponseError) ToAppError() *apperrors.AppError {
	appErr := apperrors.New(e.Code, e.Message, e.StatusCode).WithCause(e)
	if e.Client != nil {
		if res := e.Client.Resource(); res != nil {
			appErr.WithDetail("resource", res.Path)
		}
	}
	return appErr
}

// AsResponseError extracts a *ResponseError from err's chain.
func AsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsClientError reports whether err is a rejected 4xx response.
func IsClientError(err error) bool {
	re, ok := AsResponseError(err)
	return ok && apperrors.IsClientCode(re.Code)
}

// IsBadRequest reports whether err is a 400 response.
func IsBadRequest(err error) bool { return hasCode(err, apperrors.ErrCodeBadRequest) }

// IsInvalidCredentials reports whether err is a 401 response.
func IsInvalidCredentials(err error) bool { return hasCode(err, apperrors.ErrCodeUnauthorized) }

// IsAccessDenied reports whether err is a 403 response.
func IsAccessDenied(err error) bool { return hasCode(err, apperrors.ErrCodeForbidden) }

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return hasCode(err, apperrors.ErrCodeNotFound) }

// IsRateLimit reports whether err is a 429 response.
func IsRateLimit(err error) bool { return hasCode(err, apperrors.ErrCodeRateLimited) }

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool { return hasCode(err, apperrors.ErrCodeServerError) }

func hasCode(err error, code apperrors.ErrorCode) bool {
	re, ok := AsResponseError(err)
	return ok && re.Code == code
}
