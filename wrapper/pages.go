package wrapper

import (
	"context"
	"iter"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/apiwrap/observability"
)

// PageOptions limits a Pages iteration. Zero limits mean unlimited.
type PageOptions struct {
	MaxPages int
	MaxItems int
	// RequestOptions are applied to every follow-up page request, under
	// the options returned by Adapter.IteratorNextRequest.
	RequestOptions RequestOptions
}

// Pages iterates the items of a paginated response, following
// Adapter.IteratorNextRequest until no next page exists or a limit is
// reached. The executor must come from a response, e.g.
//
//	resp, _ := api.MustCall(nil).Get(ctx)
//	for item, err := range resp.MustCall(nil).Pages(ctx, wrapper.PageOptions{MaxItems: 50}) {
//		...
//	}
//
// A failed page request is yielded once as an error and ends the iteration.
func (e *Executor) Pages(ctx context.Context, po PageOptions) iter.Seq2[*Client, error] {
	return func(yield func(*Client, error) bool) {
		ctx, span := observability.StartSpan(ctx, observability.SpanPages)
		defer span.End()

		adapter := e.api.adapter
		page := e
		pages, items := 0, 0
		for {
			list := adapter.IteratorList(page.data)
			if len(list) == 0 {
				return
			}
			for _, item := range list {
				if po.MaxItems > 0 && items >= po.MaxItems {
					return
				}
				if !yield(&Client{page.with(item)}, nil) {
					return
				}
				items++
			}
			pages++
			span.SetAttributes(attribute.Int(observability.AttrPage, pages))
			if (po.MaxPages > 0 && pages >= po.MaxPages) || (po.MaxItems > 0 && items >= po.MaxItems) {
				return
			}

			next, ok := adapter.IteratorNextRequest(page.caller.Clone(), page.data, page.response)
			if !ok {
				return
			}
			next = po.RequestOptions.Merge(next)
			if next.Method == "" {
				next.Method = http.MethodGet
			}

			resp, err := page.send(ctx, next, false)
			if err != nil {
				observability.SetSpanError(ctx, err)
				yield(nil, err)
				return
			}
			page = &Executor{resp.view}
		}
	}
}
