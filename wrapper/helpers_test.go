package wrapper

import (
	"context"
	"testing"

	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/testutil"
)

var testResources = ResourceMapping{
	"test":         {Path: "test/", Docs: "http://www.example.org"},
	"user":         {Path: "user/{id}/", Docs: "http://www.example.org/user"},
	"another_root": {Path: "another-root/", Docs: "http://www.example.org/another-root"},
	"resource": {
		Path:  "resource/{number}/",
		Docs:  "http://www.example.org/resource",
		Extra: map[string]any{"spam": "eggs", "foo": "bar"},
	},
}

// testerAdapter paginates over {"data": [...], "paging": {"next": url}},
// authenticates with the "token" param and treats 401 as expiry.
type testerAdapter struct {
	BaseAdapter
	anotherRoot  string
	refresh      func(ctx context.Context, params Params) (any, error)
	refreshCalls int
}

func (a *testerAdapter) APIRoot(_ Params, name string) string {
	if name == "another_root" {
		return a.anotherRoot
	}
	return a.Root
}

func (a *testerAdapter) RequestOptions(params Params, _ string) (RequestOptions, error) {
	opts := RequestOptions{Headers: map[string]string{"X-Adapter": "1"}}
	if tok := params.String("token"); tok != "" {
		opts.Auth = httpclient.BearerAuth(tok)
	}
	return opts, nil
}

func (a *testerAdapter) IteratorList(data any) []any {
	m, _ := data.(map[string]any)
	list, _ := m["data"].([]any)
	return list
}

func (a *testerAdapter) IteratorNextRequest(_ RequestOptions, data any, _ *httpclient.Response) (RequestOptions, bool) {
	m, _ := data.(map[string]any)
	paging, _ := m["paging"].(map[string]any)
	next, _ := paging["next"].(string)
	if next == "" {
		return RequestOptions{}, false
	}
	return RequestOptions{URL: next}, true
}

func (a *testerAdapter) IsAuthenticationExpired(err *ResponseError) bool {
	return err.StatusCode == 401
}

func (a *testerAdapter) RefreshAuthentication(ctx context.Context, params Params) (any, error) {
	a.refreshCalls++
	if a.refresh != nil {
		return a.refresh(ctx, params)
	}
	params["token"] = "new_token"
	return "new_token", nil
}

func newTester(t *testing.T, opts ...Option) (*Client, *testerAdapter, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	a := &testerAdapter{
		BaseAdapter: BaseAdapter{Root: api.URL(), Mapping: testResources},
		anotherRoot: api.URL() + "/other/",
	}
	c, err := Generate(a).New(append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, a, api
}

func mustAttr(t *testing.T, c *Client, name string) *Client {
	t.Helper()
	child, err := c.Attr(name)
	if err != nil {
		t.Fatalf("Attr(%q): %v", name, err)
	}
	return child
}

func mustCall(t *testing.T, c *Client, params map[string]any) *Executor {
	t.Helper()
	e, err := c.Call(params)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	return e
}
