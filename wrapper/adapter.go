package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/wrapper/serializer"
)

// Params are the API parameters a client was created with (tokens, account
// ids, ...). Every client and executor derived from one Factory.New call
// shares the same map, so values stored by RefreshAuthentication are seen
// by later requests.
type Params map[string]any

// String returns the value of key when it is a non-empty string.
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// DecodeFunc converts a response body to native data.
type DecodeFunc func(resp *httpclient.Response) (any, error)

// Adapter holds everything specific to one API. Embed BaseAdapter and
// override the hooks the API needs.
type Adapter interface {
	// APIRoot returns the base URL for a resource.
	APIRoot(params Params, resourceName string) string
	// Resources returns the resource mapping.
	Resources() ResourceMapping
	// FillResourceTemplateURL substitutes {name} placeholders.
	FillResourceTemplateURL(template string, params map[string]string) (string, error)
	// RequestOptions returns the base options of every request (auth, headers).
	RequestOptions(params Params, method string) (RequestOptions, error)
	// FormatDataToRequest encodes request data.
	FormatDataToRequest(data any) (body []byte, contentType string, err error)
	// ResponseToNative decodes a response body.
	ResponseToNative(resp *httpclient.Response) (any, error)
	// ProcessResponse returns the response data, or a *ProcessError to
	// reject the response.
	ProcessResponse(resp *httpclient.Response, decode DecodeFunc) (any, error)
	// ErrorMessage extracts a message from rejected response data.
	ErrorMessage(data any, resp *httpclient.Response) string
	// IteratorList returns the items of one page.
	IteratorList(data any) []any
	// IteratorNextRequest returns the options of the next page request.
	// prev holds the previous page's caller options, without the ones
	// returned by RequestOptions, which are merged in again on every request.
	IteratorNextRequest(prev RequestOptions, data any, resp *httpclient.Response) (RequestOptions, bool)
	// IsAuthenticationExpired decides whether a rejected response warrants
	// refreshing credentials.
	IsAuthenticationExpired(err *ResponseError) bool
	// RefreshAuthentication renews credentials. A truthy result triggers
	// one retry of the failed request.
	RefreshAuthentication(ctx context.Context, params Params) (any, error)
}

// SerializerProvider is implemented by adapters that ship a default serializer.
type SerializerProvider interface {
	Serializer() serializer.Serializer
}

// BaseAdapter implements every Adapter hook with JSON defaults.
type BaseAdapter struct {
	Root    string
	Mapping ResourceMapping
	JSONCodec
}

var _ Adapter = BaseAdapter{}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// APIRoot returns Root.
func (a BaseAdapter) APIRoot(_ Params, _ string) string { return a.Root }

// Resources returns Mapping.
func (a BaseAdapter) Resources() ResourceMapping { return a.Mapping }

// FillResourceTemplateURL substitutes {name} placeholders with path-escaped
// values. Unused params are ignored.
func (a BaseAdapter) FillResourceTemplateURL(template string, params map[string]string) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingURLParam, strings.Join(missing, ", "))
	}
	return out, nil
}

// RequestOptions returns empty options.
func (a BaseAdapter) RequestOptions(_ Params, _ string) (RequestOptions, error) {
	return RequestOptions{}, nil
}

// ProcessResponse rejects 5xx responses without decoding them and 4xx
// responses with their decoded body.
func (a BaseAdapter) ProcessResponse(resp *httpclient.Response, decode DecodeFunc) (any, error) {
	if resp.StatusCode >= 500 {
		return nil, &ProcessError{Code: apperrors.ErrCodeServerError}
	}
	data, err := decode(resp)
	if resp.StatusCode >= 400 {
		if err != nil {
			data = nil
		}
		return nil, &ProcessError{Code: apperrors.FromHTTPStatus(resp.StatusCode), Data: data}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ErrorMessage returns the first string found at "error", "message" or
// "detail" of a decoded object. A nested {"error": {"message": ...}} is
// also recognised.
func (a BaseAdapter) ErrorMessage(data any, _ *httpclient.Response) string {
	m, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// IteratorList returns nil: no pagination.
func (a BaseAdapter) IteratorList(_ any) []any { return nil }

// IteratorNextRequest reports no next page.
func (a BaseAdapter) IteratorNextRequest(_ RequestOptions, _ any, _ *httpclient.Response) (RequestOptions, bool) {
	return RequestOptions{}, false
}

// IsAuthenticationExpired returns false.
func (a BaseAdapter) IsAuthenticationExpired(_ *ResponseError) bool { return false }

// RefreshAuthentication does nothing.
func (a BaseAdapter) RefreshAuthentication(_ context.Context, _ Params) (any, error) {
	return nil, nil
}

// JSONCodec encodes request data as JSON and decodes JSON responses.
type JSONCodec struct{}

// FormatDataToRequest marshals data to JSON.
func (JSONCodec) FormatDataToRequest(data any) ([]byte, string, error) {
	if data == nil {
		return nil, "", nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("encode json: %w", err)
	}
	return body, "application/json", nil
}

// ResponseToNative decodes the body keeping numbers as json.Number. An
// empty body decodes to nil.
func (JSONCodec) ResponseToNative(resp *httpclient.Response) (any, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}
	return decodeJSON(resp.Body)
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// FormCodec encodes request data as an url-encoded form and exposes
// responses as {"text": body}. Embed it next to BaseAdapter to replace
// the JSON defaults.
type FormCodec struct{}

// FormatDataToRequest encodes map data as application/x-www-form-urlencoded.
func (FormCodec) FormatDataToRequest(data any) ([]byte, string, error) {
	var form url.Values
	switch v := data.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		form = v
	case map[string]string:
		form = make(url.Values, len(v))
		for k, s := range v {
			form.Set(k, s)
		}
	case map[string]any:
		form = make(url.Values, len(v))
		for k, item := range v {
			switch iv := item.(type) {
			case nil:
			case []any:
				for _, e := range iv {
					form.Add(k, fmt.Sprint(e))
				}
			case []string:
				form[k] = append(form[k], iv...)
			default:
				form.Set(k, fmt.Sprint(iv))
			}
		}
	default:
		return nil, "", fmt.Errorf("encode form: unsupported %T", data)
	}
	return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
}

// ResponseToNative wraps the body text.
func (FormCodec) ResponseToNative(resp *httpclient.Response) (any, error) {
	return map[string]any{"text": resp.Text()}, nil
}
