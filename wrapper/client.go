package wrapper

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/resilience"
	"github.com/kbukum/apiwrap/wrapper/serializer"
)

// instance is the state shared by every client of one Factory.New call.
type instance struct {
	adapter          Adapter
	session          *httpclient.Session
	params           Params
	defaultURLParams map[string]any
	serializer       serializer.Serializer
	refreshByDefault bool
	throttle         *resilience.HeaderThrottle
	log              *logger.Logger
	metrics          *observability.Metrics
}

// view is what clients and executors hold: a value positioned somewhere in
// an API, plus the request that produced it.
type view struct {
	api          *instance
	data         any
	resource     *Resource
	resourceName string
	response     *httpclient.Response
	// request holds the options sent, caller holds the caller's options
	// before the adapter's were merged in.
	request     RequestOptions
	caller      RequestOptions
	refreshData any
}

// with returns a copy of v holding data. The copy is no longer bound to a
// resource: strings found in data are never URL templates. The resource
// name is kept for telemetry.
func (v view) with(data any) view {
	v.data = data
	v.resource = nil
	return v
}

// Client navigates an API. Resources are reached by name with Attr, nested
// response data with Attr, Item and Index; Call turns the current position
// into an Executor.
type Client struct {
	view
}

// Attr resolves name against the client's data, then the resource mapping.
// A snake_case name also matches its camelCase and PascalCase forms.
func (c *Client) Attr(name string) (*Client, error) {
	for _, candidate := range nameCandidates(name) {
		if child, ok := c.lookup(candidate); ok {
			return child, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
}

// MustAttr is like Attr but panics on error.
func (c *Client) MustAttr(name string) *Client {
	child, err := c.Attr(name)
	if err != nil {
		panic(err)
	}
	return child
}

// Item resolves key exactly against the client's data, then the resource mapping.
func (c *Client) Item(key string) (*Client, error) {
	if child, ok := c.lookup(key); ok {
		return child, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownName, key)
}

// Index returns the i-th element of list data.
func (c *Client) Index(i int) (*Client, error) {
	list, ok := c.data.([]any)
	if !ok || i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownName, i)
	}
	return &Client{c.with(list[i])}, nil
}

// Path resolves a gjson path, e.g. "user.emails.0", against the data.
func (c *Client) Path(path string) (*Client, error) {
	v, ok, err := lookupPath(c.data, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, path)
	}
	return &Client{c.with(v)}, nil
}

func (c *Client) lookup(name string) (*Client, bool) {
	if m, ok := c.data.(map[string]any); ok {
		if v, ok := m[name]; ok {
			return &Client{c.with(v)}, true
		}
	}

	res, ok := c.api.adapter.Resources()[name]
	if !ok {
		return nil, false
	}
	root := c.api.adapter.APIRoot(c.api.params, name)
	child := c.with(strings.TrimRight(root, "/") + "/" + strings.TrimLeft(res.Path, "/"))
	child.resource = &res
	child.resourceName = name
	return &Client{child}, true
}

// Call binds the client to an executor. For a resource, the URL template
// is filled from the default URL params overlaid by params.
func (c *Client) Call(params map[string]any) (*Executor, error) {
	v := c.view
	urlParams := make(map[string]string, len(c.api.defaultURLParams)+len(params))
	for k, val := range c.api.defaultURLParams {
		urlParams[k] = fmt.Sprint(val)
	}
	for k, val := range params {
		urlParams[k] = fmt.Sprint(val)
	}

	if tmpl, ok := v.data.(string); ok && v.resource != nil && len(urlParams) > 0 {
		u, err := c.api.adapter.FillResourceTemplateURL(tmpl, urlParams)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", v.resourceName, err)
		}
		v.data = u
	}
	return &Executor{v}, nil
}

// MustCall is like Call but panics on error.
func (c *Client) MustCall(params map[string]any) *Executor {
	e, err := c.Call(params)
	if err != nil {
		panic(err)
	}
	return e
}

// Dir lists the names reachable from the client: resource names when it
// holds no data, keys for object data.
func (c *Client) Dir() []string {
	switch d := c.data.(type) {
	case nil:
		return c.api.adapter.Resources().Names()
	case map[string]any:
		return slices.Sorted(maps.Keys(d))
	default:
		return []string{}
	}
}

// Len returns the length of list, object or string data.
func (c *Client) Len() int {
	switch d := c.data.(type) {
	case map[string]any:
		return len(d)
	case []any:
		return len(d)
	case string:
		return len(d)
	default:
		return 0
	}
}

// Contains reports whether object data has key or list data holds it.
func (c *Client) Contains(key string) bool {
	switch d := c.data.(type) {
	case map[string]any:
		_, ok := d[key]
		return ok
	case []any:
		return slices.ContainsFunc(d, func(v any) bool {
			s, ok := v.(string)
			return ok && s == key
		})
	case string:
		return strings.Contains(d, key)
	default:
		return false
	}
}

// Items iterates list data, yielding each element as a Client.
func (c *Client) Items() iter.Seq2[int, *Client] {
	return func(yield func(int, *Client) bool) {
		list, _ := c.data.([]any)
		for i, v := range list {
			if !yield(i, &Client{c.with(v)}) {
				return
			}
		}
	}
}

// Data returns the underlying value.
func (c *Client) Data() any { return c.data }

// Resource returns the endpoint the client points at, or nil.
func (c *Client) Resource() *Resource { return c.resource }

// ResourceName returns the mapping name of the endpoint, or "".
func (c *Client) ResourceName() string { return c.resourceName }

// Response returns the response the data came from, or nil.
func (c *Client) Response() *httpclient.Response { return c.response }

// RequestOptions returns the options of the request the data came from.
func (c *Client) RequestOptions() RequestOptions { return c.request }

// Doc returns generated documentation for a resource client: a header line,
// the path, the docs URL, then the flags and extra keys in title case,
// sorted. It is empty for clients not bound to a resource.
func (c *Client) Doc() string {
	return resourceDoc(c.resource)
}

// String prints the data as indented JSON.
func (c *Client) String() string {
	return describe("Client", c.data)
}

func describe(kind string, data any) string {
	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Sprintf("<%s object: %v>", kind, data)
	}
	return fmt.Sprintf("<%s object\n%s>", kind, out)
}

// docHeader opens every generated resource doc.
const docHeader = "Generated from the resource mapping."

func resourceDoc(res *Resource) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nResource: %s\nDocs: %s\n", docHeader, res.Path, res.Docs)

	extra := make(map[string]string, len(res.Extra)+2)
	if res.List {
		extra["list"] = "true"
	}
	if res.Detail {
		extra["detail"] = "true"
	}
	for k, v := range res.Extra {
		extra[k] = fmt.Sprint(v)
	}
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		fmt.Fprintf(&b, "%s: %s\n", titleCase(k), extra[k])
	}
	return strings.TrimSpace(b.String())
}

// titleCase upper-cases the first letter of every word: "rate_limit"
// becomes "Rate_Limit".
func titleCase(s string) string {
	r := []rune(s)
	start := true
	for i, c := range r {
		if unicode.IsLetter(c) {
			if start {
				r[i] = unicode.ToUpper(c)
			} else {
				r[i] = unicode.ToLower(c)
			}
			start = false
		} else {
			start = true
		}
	}
	return string(r)
}

// nameCandidates returns name, its camelCase and its PascalCase forms,
// without duplicates. Segments after the first are title-cased, so
// "foo_BAR" becomes "fooBar".
func nameCandidates(name string) []string {
	out := []string{name}
	parts := strings.Split(name, "_")
	if len(parts) > 1 {
		var b strings.Builder
		b.WriteString(parts[0])
		for _, p := range parts[1:] {
			b.WriteString(titleCase(p))
		}
		out = append(out, b.String())
	}
	out = append(out, upperFirst(out[len(out)-1]))
	return slices.Compact(out)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
