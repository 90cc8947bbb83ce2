package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiwrap/wrapper"
)

type callOptions struct {
	method   string
	params   []string
	query    []string
	headers  []string
	data     string
	pages    bool
	maxPages int
	maxItems int
	selector string
	output   string
}

func (a *app) newCallCmd() *cobra.Command {
	var o callOptions
	cmd := &cobra.Command{
		Use:   "call <resource>",
		Short: "Send a request to a resource",
		Example: `  apiwrap call user_repos -p user=ann
  apiwrap call issues -X POST -p repo=apiwrap --data '{"title":"bug"}'
  apiwrap call user_repos -p user=ann --pages --max-items 50 -o yaml`,
		Args:    cobra.ExactArgs(1),
		PreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.method, "method", "X", "GET", "HTTP method")
	f.StringArrayVarP(&o.params, "param", "p", nil, "URL template parameter key=value")
	f.StringArrayVarP(&o.query, "query", "q", nil, "query parameter key=value")
	f.StringArrayVarP(&o.headers, "header", "H", nil, "request header 'Name: value'")
	f.StringVarP(&o.data, "data", "d", "", "JSON request data")
	f.BoolVar(&o.pages, "pages", false, "follow pagination and print every item")
	f.IntVar(&o.maxPages, "max-pages", 0, "stop after this many pages (0 = no limit)")
	f.IntVar(&o.maxItems, "max-items", 0, "stop after this many items (0 = no limit)")
	f.StringVarP(&o.selector, "select", "s", "", "print only this path of the response, e.g. data.0.name")
	f.StringVarP(&o.output, "output", "o", outputJSON, "output format: json or yaml")
	return cmd
}

func (a *app) call(cmd *cobra.Command, resource string, o callOptions) error {
	ctx := cmd.Context()

	params, err := parsePairs(o.params, "=")
	if err != nil {
		return fmt.Errorf("--param: %w", err)
	}
	query, err := parsePairs(o.query, "=")
	if err != nil {
		return fmt.Errorf("--query: %w", err)
	}
	headers, err := parsePairs(o.headers, ":")
	if err != nil {
		return fmt.Errorf("--header: %w", err)
	}

	reqOpts := []wrapper.RequestOption{wrapper.WithQuery(query), wrapper.WithHeaders(headers)}
	if o.data != "" {
		var data any
		if err := json.Unmarshal([]byte(o.data), &data); err != nil {
			return fmt.Errorf("--data is not valid JSON: %w", err)
		}
		reqOpts = append(reqOpts, wrapper.WithData(data))
	}

	res, err := a.client.Attr(resource)
	if err != nil {
		return err
	}
	urlParams := make(map[string]any, len(params))
	for k, v := range params {
		urlParams[k] = v
	}
	exec, err := res.Call(urlParams)
	if err != nil {
		return err
	}

	resp, err := exec.Do(ctx, o.method, reqOpts...)
	if err != nil {
		if re, ok := wrapper.AsResponseError(err); ok && re.Client.Data() != nil {
			_ = render(cmd.ErrOrStderr(), o.output, re.Client.Data())
		}
		return err
	}

	if !o.pages {
		return a.print(resp, o)
	}

	pager, err := resp.Call(nil)
	if err != nil {
		return err
	}
	var items []any
	for item, err := range pager.Pages(ctx, wrapper.PageOptions{MaxPages: o.maxPages, MaxItems: o.maxItems}) {
		if err != nil {
			return err
		}
		if o.selector != "" {
			if item, err = item.Path(o.selector); err != nil {
				return err
			}
		}
		items = append(items, item.Data())
	}
	return render(a.out, o.output, items)
}

func (a *app) print(resp *wrapper.Client, o callOptions) error {
	if o.selector != "" {
		var err error
		if resp, err = resp.Path(o.selector); err != nil {
			return err
		}
	}
	return render(a.out, o.output, resp.Data())
}

// parsePairs splits each "key<sep>value" entry. Values may contain sep.
func parsePairs(entries []string, sep string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key%svalue, got %q", sep, e)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
