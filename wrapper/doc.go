// Package wrapper turns an HTTP API description into an explorable client.
//
// An Adapter describes the API: its root URL, a ResourceMapping of named
// URL templates, and hooks for authentication, encoding, response
// handling, pagination and credential refresh. BaseAdapter implements
// every hook with JSON defaults; embed it and override what differs.
//
//	type GitHub struct {
//	    wrapper.BaseAdapter
//	}
//
//	func (GitHub) RequestOptions(p wrapper.Params, _ string) (wrapper.RequestOptions, error) {
//	    return wrapper.RequestOptions{Auth: httpclient.BearerAuth(p.String("token"))}, nil
//	}
//
//	gh, err := wrapper.Generate(GitHub{wrapper.BaseAdapter{
//	    Root:    "https://api.github.com",
//	    Mapping: wrapper.ResourceMapping{"user_repos": {Path: "users/{user}/repos"}},
//	}}).New(wrapper.WithParams(wrapper.Params{"token": tok}))
//
// A Client navigates by name. Attr resolves a resource to its URL
// template; Call fills the template and returns an Executor whose verbs
// send the request:
//
//	repos, err := gh.MustAttr("user_repos").MustCall(map[string]any{"user": "ann"}).Get(ctx)
//
// The response is itself a Client over the decoded data, so nested fields
// are reached the same way (Attr, Item, Index, Path). Rejected responses
// come back as *ResponseError, classified with IsNotFound, IsRateLimit and
// friends.
//
// When a request is rejected and the adapter reports expired credentials,
// RefreshAuthentication runs and the request is retried once. Executor.Pages
// follows IteratorNextRequest across pages.
//
// APIs that need no code can be described with a Definition and served by
// DeclarativeAdapter.
package wrapper
