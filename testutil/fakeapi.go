package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// RecordedRequest is one request received by a FakeAPI.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Reply is a canned response.
type Reply struct {
	Status  int
	Body    any
	Headers map[string]string
}

// FakeAPI is an HTTP API stub backed by a gin engine. Every request is
// recorded before routing.
type FakeAPI struct {
	Engine *gin.Engine
	server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeAPI starts a fake API and stops it when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{Engine: gin.New()}
	f.Engine.Use(f.record)
	f.server = httptest.NewServer(f.Engine)
	t.Cleanup(f.Close)
	return f
}

// URL returns the base URL of the server.
func (f *FakeAPI) URL() string { return f.server.URL }

// Client returns an *http.Client configured for the server.
func (f *FakeAPI) Client() *http.Client { return f.server.Client() }

// Close shuts the server down.
func (f *FakeAPI) Close() { f.server.Close() }

// Handle registers a handler.
func (f *FakeAPI) Handle(method, path string, h gin.HandlerFunc) {
	f.Engine.Handle(method, path, h)
}

// Reply registers a handler that always answers with r.
func (f *FakeAPI) Reply(method, path string, r Reply) {
	f.Handle(method, path, func(c *gin.Context) { write(c, r) })
}

// JSON registers a handler that always answers status with body as JSON.
func (f *FakeAPI) JSON(method, path string, status int, body any) {
	f.Reply(method, path, Reply{Status: status, Body: body})
}

// Sequence registers a handler that answers with each reply in turn and
// repeats the last one once they are used up.
func (f *FakeAPI) Sequence(method, path string, replies ...Reply) {
	var (
		mu sync.Mutex
		n  int
	)
	f.Handle(method, path, func(c *gin.Context) {
		mu.Lock()
		r := replies[min(n, len(replies)-1)]
		n++
		mu.Unlock()
		write(c, r)
	})
}

// Requests returns the recorded requests in arrival order.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request. It fails the test when no
// request was received.
func (f *FakeAPI) LastRequest(t testing.TB) RecordedRequest {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("fake API received no requests")
	}
	return reqs[len(reqs)-1]
}

// Count returns how many requests matched method and path.
func (f *FakeAPI) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets the recorded requests.
func (f *FakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *FakeAPI) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Header:   c.Request.Header.Clone(),
		Body:     body,
	})
	f.mu.Unlock()

	c.Next()
}

func write(c *gin.Context, r Reply) {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	for k, v := range r.Headers {
		c.Header(k, v)
	}
	switch b := r.Body.(type) {
	case nil:
		c.Status(status)
	case string:
		c.String(status, "%s", b)
	case []byte:
		c.Data(status, "application/octet-stream", b)
	default:
		c.JSON(status, b)
	}
}
