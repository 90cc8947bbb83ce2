package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/resilience"
)

// Session is the HTTP layer API wrappers send their requests through.
// It owns transport concerns only: TLS, auth, cookies, rate limiting and
// trace propagation. Status codes are returned untouched; classifying them
// is the caller's job.
type Session struct {
	httpClient *http.Client
	config     Config
	rl         *resilience.RateLimiter
}

// Option customizes a Session after construction.
type Option func(*Session)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		if rt != nil {
			s.httpClient.Transport = rt
		}
	}
}

// New creates a session with the given configuration.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	s := &Session{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}

	if cfg.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("httpclient: cookie jar: %w", err)
		}
		s.httpClient.Jar = jar
	}
	if cfg.RateLimiter != nil {
		s.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Do sends exactly one HTTP request and returns the complete response.
// The returned error is always an *Error describing a transport failure;
// HTTP error statuses come back as a normal Response.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			return nil, NewTimeoutError(err)
		}
	}

	httpReq, err := s.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, httpReq.Method),
			attribute.String(observability.AttrURL, httpReq.URL.Redacted()),
		),
	)
	defer span.End()

	httpReq = httpReq.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	requestID := ""
	if h := s.config.RequestIDHeader; h != "" {
		requestID = httpReq.Header.Get(h)
		if requestID == "" {
			requestID = uuid.NewString()
			httpReq.Header.Set(h, requestID)
		}
		span.SetAttributes(attribute.String(observability.AttrRequestID, requestID))
	}

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil || isTimeout(err) {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
		URL:        httpReq.URL.String(),
		RequestID:  requestID,
		Duration:   time.Since(start),
	}, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (s *Session) Unwrap() *http.Client {
	return s.httpClient
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.config
}

// Close releases idle connections.
func (s *Session) Close(_ context.Context) error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// buildRequest constructs an *http.Request from the session config and request.
func (s *Session) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.URL
	if s.config.BaseURL != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(s.config.BaseURL, "/") + "/" + strings.TrimLeft(url, "/")
	}
	if url == "" {
		return nil, NewValidationError("request URL is empty")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if s.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", s.config.UserAgent)
	}
	for k, v := range s.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if body != nil && contentType != "" {
		if _, multipart := req.Body.(*MultipartBody); multipart || httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
	}

	auth := s.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.Apply(httpReq)

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
