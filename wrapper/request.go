package wrapper

import (
	"maps"
	"slices"

	"github.com/kbukum/apiwrap/httpclient"
)

// RequestOptions describes one request before it is handed to the session.
// Adapters return a base set; callers overlay theirs.
type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	// Data is serialized and encoded by the adapter.
	Data any
	// Body is sent as is, bypassing Data encoding.
	Body        []byte
	ContentType string
	// Files switch the request to multipart/form-data, with Data entries
	// as form fields.
	Files []httpclient.FileField
	Auth  *httpclient.AuthConfig
	// RefreshToken overrides the client's refresh-on-expiry default for
	// this call.
	RefreshToken *bool
}

// Merge returns o overlaid by other. Header and query maps are merged key
// by key; other's non-zero fields win.
func (o RequestOptions) Merge(other RequestOptions) RequestOptions {
	out := o.Clone()
	if other.Method != "" {
		out.Method = other.Method
	}
	if other.URL != "" {
		out.URL = other.URL
	}
	out.Headers = mergeStrings(out.Headers, other.Headers)
	out.Query = mergeStrings(out.Query, other.Query)
	if other.Data != nil {
		out.Data = other.Data
	}
	if other.Body != nil {
		out.Body = other.Body
	}
	if other.ContentType != "" {
		out.ContentType = other.ContentType
	}
	if len(other.Files) > 0 {
		out.Files = slices.Clone(other.Files)
	}
	if other.Auth != nil {
		out.Auth = other.Auth
	}
	if other.RefreshToken != nil {
		v := *other.RefreshToken
		out.RefreshToken = &v
	}
	return out
}

// Clone returns a copy whose maps and slices can be modified independently.
func (o RequestOptions) Clone() RequestOptions {
	out := o
	out.Headers = maps.Clone(o.Headers)
	out.Query = maps.Clone(o.Query)
	out.Files = slices.Clone(o.Files)
	return out
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

// RequestOption configures a single call.
type RequestOption func(*RequestOptions)

// WithData sets the request data, encoded by the adapter.
func WithData(data any) RequestOption {
	return func(o *RequestOptions) { o.Data = data }
}

// WithBody sets a raw body and its content type.
func WithBody(body []byte, contentType string) RequestOption {
	return func(o *RequestOptions) {
		o.Body = body
		o.ContentType = contentType
	}
}

// WithQuery merges query parameters.
func WithQuery(query map[string]string) RequestOption {
	return func(o *RequestOptions) { o.Query = mergeStrings(o.Query, query) }
}

// WithQueryParam sets one query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Query = mergeStrings(o.Query, map[string]string{key: value}) }
}

// WithHeader sets one header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Headers = mergeStrings(o.Headers, map[string]string{key: value}) }
}

// WithHeaders merges headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) { o.Headers = mergeStrings(o.Headers, headers) }
}

// WithURL overrides the URL the executor is bound to.
func WithURL(url string) RequestOption {
	return func(o *RequestOptions) { o.URL = url }
}

// WithFiles attaches files, making the request multipart.
func WithFiles(files ...httpclient.FileField) RequestOption {
	return func(o *RequestOptions) { o.Files = append(o.Files, files...) }
}

// WithAuth overrides authentication for this call.
func WithAuth(auth *httpclient.AuthConfig) RequestOption {
	return func(o *RequestOptions) { o.Auth = auth }
}

// WithRefreshToken enables or disables the refresh-and-retry path for this call.
func WithRefreshToken(enabled bool) RequestOption {
	return func(o *RequestOptions) { o.RefreshToken = &enabled }
}

// WithRequestOptions overlays a full RequestOptions value.
func WithRequestOptions(opts RequestOptions) RequestOption {
	return func(o *RequestOptions) { *o = o.Merge(opts) }
}
