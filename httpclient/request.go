package httpclient

import (
	"net/http"
	"time"
)

// Request describes one outbound HTTP request.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// URL is the absolute request URL, or a path joined onto Config.BaseURL.
	URL string
	// Headers are request-specific headers (merged over session defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body accepts *MultipartBody, io.Reader, []byte, string, or any value
	// that will be JSON-encoded.
	Body any
	// Auth overrides the session-level auth for this request.
	Auth *AuthConfig
}

// Response is the fully read result of an HTTP request.
type Response struct {
	StatusCode int
	// Headers holds the first value of each response header, keyed canonically.
	Headers map[string]string
	Body    []byte
	// URL is the final request URL including the encoded query.
	URL string
	// RequestID is the generated or forwarded request-id header value.
	RequestID string
	Duration  time.Duration
}

// Header returns a response header value by case-insensitive name.
func (r *Response) Header(name string) string {
	if r == nil {
		return ""
	}
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
