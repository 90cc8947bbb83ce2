package wrapper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/observability"
)

// Executor is a client bound to one URL. Its verbs send a request and wrap
// the result in a new Client.
type Executor struct {
	view
}

var executorMethods = []string{
	"Data", "Decimal", "Delete", "Do", "DocsURL", "Get", "Options", "Pages",
	"Patch", "Post", "Put", "RefreshData", "RequestOptions", "Response",
	"StatusCode", "Time", "To",
}

// Data returns the bound URL, or the data of a response executor.
func (e *Executor) Data() any { return e.data }

// Response returns the response the executor was produced from.
func (e *Executor) Response() (*httpclient.Response, error) {
	if e.response == nil {
		return nil, ErrNoResponse
	}
	return e.response, nil
}

// StatusCode returns the response status, or 0 without a response.
func (e *Executor) StatusCode() int {
	if e.response == nil {
		return 0
	}
	return e.response.StatusCode
}

// RefreshData returns the last RefreshAuthentication result.
func (e *Executor) RefreshData() any { return e.refreshData }

// RequestOptions returns the options of the request that produced the data.
func (e *Executor) RequestOptions() RequestOptions { return e.request }

// DocsURL returns the documentation link of the resource.
func (e *Executor) DocsURL() (string, error) {
	if e.resource == nil || e.resource.Docs == "" {
		return "", ErrNoResource
	}
	return e.resource.Docs, nil
}

// Doc returns generated documentation for the resource.
func (e *Executor) Doc() string { return resourceDoc(e.resource) }

// Methods lists the executor operations followed by the serializer's
// conversion methods.
func (e *Executor) Methods() []string {
	out := slices.Clone(executorMethods)
	if e.api.serializer != nil {
		out = append(out, e.api.serializer.Methods()...)
	}
	return out
}

// String prints the data as indented JSON.
func (e *Executor) String() string { return describe("Executor", e.data) }

// Get sends a GET request.
func (e *Executor) Get(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodGet, opts...)
}

// Post sends a POST request.
func (e *Executor) Post(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodPost, opts...)
}

// Put sends a PUT request.
func (e *Executor) Put(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodPut, opts...)
}

// Patch sends a PATCH request.
func (e *Executor) Patch(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodPatch, opts...)
}

// Delete sends a DELETE request.
func (e *Executor) Delete(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodDelete, opts...)
}

// Options sends an OPTIONS request.
func (e *Executor) Options(ctx context.Context, opts ...RequestOption) (*Client, error) {
	return e.Do(ctx, http.MethodOptions, opts...)
}

// Do sends one request with the given method to the bound URL.
//
// The adapter's base options are overlaid by opts, the data is serialized
// and encoded, and the response is handed to Adapter.ProcessResponse. When
// the response is rejected and the adapter reports expired credentials,
// RefreshAuthentication runs and a truthy result retries the request once.
func (e *Executor) Do(ctx context.Context, method string, opts ...RequestOption) (*Client, error) {
	caller := RequestOptions{Method: strings.ToUpper(method)}
	if u, ok := e.data.(string); ok {
		caller.URL = u
	}
	for _, opt := range opts {
		opt(&caller)
	}
	return e.send(ctx, caller, false)
}

func (e *Executor) send(ctx context.Context, caller RequestOptions, retried bool) (*Client, error) {
	api := e.api
	if caller.Method == "" {
		caller.Method = http.MethodGet
	}

	base, err := api.adapter.RequestOptions(api.params, caller.Method)
	if err != nil {
		return nil, fmt.Errorf("request options: %w", err)
	}
	opts := base.Merge(caller)

	ctx, span := observability.StartSpan(ctx, observability.SpanCall,
		trace.WithAttributes(
			attribute.String(observability.AttrResource, e.resourceName),
			attribute.String(observability.AttrHTTPMethod, opts.Method),
			attribute.Bool(observability.AttrRetry, retried),
		),
	)
	defer span.End()
	log := api.log.WithContext(ctx)

	req, err := e.buildRequest(opts)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	api.metrics.RecordRequestStart(ctx)
	start := time.Now()
	resp, err := api.session.Do(ctx, req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	api.metrics.RecordRequestEnd(ctx, e.resourceName, opts.Method, status, time.Since(start))
	if err != nil {
		log.Error("request failed", logger.MergeWithError(logger.RequestFields(opts.Method, opts.URL, e.resourceName), err))
		api.metrics.RecordError(ctx, transportCode(err), e.resourceName)
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	fields := logger.RequestFields(opts.Method, resp.URL, e.resourceName)
	fields[logger.FieldStatus] = resp.StatusCode
	fields[logger.FieldRequestID] = resp.RequestID
	log.Debug("request completed", logger.MergeWithDuration(fields, resp.Duration))

	if err := e.pace(ctx, resp); err != nil {
		return nil, err
	}

	data, err := api.adapter.ProcessResponse(resp, api.adapter.ResponseToNative)
	if err == nil {
		return e.wrap(data, resp, caller, opts), nil
	}

	var pe *ProcessError
	if !errors.As(err, &pe) {
		observability.SetSpanError(ctx, err)
		return nil, fmt.Errorf("process response: %w", err)
	}

	errClient := e.wrap(pe.Data, resp, caller, opts)
	respErr := newResponseError(pe, resp.StatusCode, api.adapter.ErrorMessage(pe.Data, resp), errClient)
	api.metrics.RecordError(ctx, string(respErr.Code), e.resourceName)

	if !retried && e.refreshEnabled(opts) && api.adapter.IsAuthenticationExpired(respErr) {
		retry, err := e.refresh(ctx, log)
		if err != nil {
			observability.SetSpanError(ctx, respErr)
			return nil, errors.Join(respErr, err)
		}
		if retry {
			return e.send(ctx, caller, true)
		}
	}

	observability.SetSpanError(ctx, respErr)
	return nil, respErr
}

// refresh runs RefreshAuthentication and reports whether the request
// should be retried.
func (e *Executor) refresh(ctx context.Context, log *logger.Logger) (bool, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanRefresh)
	defer span.End()

	data, err := e.api.adapter.RefreshAuthentication(ctx, e.api.params)
	e.refreshData = data
	refreshed := err == nil && truthy(data)
	e.api.metrics.RecordRefresh(ctx, e.resourceName, refreshed)

	if err != nil {
		log.Warn("authentication refresh failed", logger.MergeWithError(logger.Fields(logger.FieldResource, e.resourceName), err))
		observability.SetSpanError(ctx, err)
		return false, fmt.Errorf("refresh authentication: %w", err)
	}
	log.Info("authentication refreshed", logger.Fields(
		logger.FieldResource, e.resourceName,
		"retry", refreshed,
	))
	return refreshed, nil
}

func (e *Executor) refreshEnabled(opts RequestOptions) bool {
	if opts.RefreshToken != nil {
		return *opts.RefreshToken
	}
	return e.api.refreshByDefault
}

// pace waits as long as the rate-limit headers of resp ask for.
func (e *Executor) pace(ctx context.Context, resp *httpclient.Response) error {
	t := e.api.throttle
	delay := t.Delay(resp.Header)
	if delay <= 0 {
		return nil
	}
	e.api.log.Warn("rate limit reached, pausing", logger.Fields(
		logger.FieldResource, e.resourceName,
		"delay_ms", delay.Milliseconds(),
	))
	e.api.metrics.RecordThrottle(ctx, e.resourceName, delay)
	return t.Wait(ctx, delay)
}

func (e *Executor) buildRequest(opts RequestOptions) (httpclient.Request, error) {
	req := httpclient.Request{
		Method:  opts.Method,
		URL:     opts.URL,
		Headers: make(map[string]string, len(opts.Headers)+1),
		Query:   opts.Query,
		Auth:    opts.Auth,
	}
	for k, v := range opts.Headers {
		req.Headers[k] = v
	}

	switch {
	case len(opts.Files) > 0:
		fields, err := e.formFields(opts.Data)
		if err != nil {
			return req, err
		}
		req.Body = httpclient.NewMultipartBody(fields, opts.Files)
	case opts.Body != nil:
		req.Body = opts.Body
		if opts.ContentType != "" {
			req.Headers["Content-Type"] = opts.ContentType
		}
	case opts.Data != nil:
		data, err := e.serialize(opts.Data)
		if err != nil {
			return req, err
		}
		body, contentType, err := e.api.adapter.FormatDataToRequest(data)
		if err != nil {
			return req, fmt.Errorf("format request data: %w", err)
		}
		req.Body = body
		if opts.ContentType != "" {
			contentType = opts.ContentType
		}
		if contentType != "" {
			req.Headers["Content-Type"] = contentType
		}
	}
	return req, nil
}

func (e *Executor) serialize(data any) (any, error) {
	if e.api.serializer == nil {
		return data, nil
	}
	out, err := e.api.serializer.Serialize(data)
	if err != nil {
		return nil, fmt.Errorf("serialize request data: %w", err)
	}
	return out, nil
}

func (e *Executor) formFields(data any) (map[string]any, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = v
		}
		return out, nil
	case map[string]any:
		s, err := e.serialize(d)
		if err != nil {
			return nil, err
		}
		return s.(map[string]any), nil
	default:
		return nil, fmt.Errorf("multipart fields: unsupported data %T", data)
	}
}

// wrap binds response data to a client. caller is what follow-up requests
// (pagination, retries) start from; opts is what was actually sent.
func (e *Executor) wrap(data any, resp *httpclient.Response, caller, opts RequestOptions) *Client {
	v := e.with(data)
	v.response = resp
	v.request = opts
	v.caller = caller
	return &Client{v}
}

func transportCode(err error) string {
	var he *httpclient.Error
	if errors.As(err, &he) {
		return string(he.ToAppError().Code)
	}
	return string(apperrors.ErrCodeInternal)
}

// truthy reports whether v carries a value: nil, false, zero numbers and
// empty strings, maps and slices are falsy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
