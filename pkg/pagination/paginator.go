package pagination

import (
	"context"
	"iter"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/interfaces"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Extractor pulls the items out of a decoded page.
type Extractor[P, T any] func(page *P) []T

// StopReason records why a Paginator stopped fetching.
type StopReason int

const (
	// Running means the cursor has not reached End yet.
	Running StopReason = iota
	// Exhausted means the last page carried no next link.
	Exhausted
	// Stopped means the continuation policy declined the next page.
	Stopped
	// Failed means a request or its decoding failed. See Err.
	Failed
	// Abandoned means the consumer stopped iterating before the end.
	Abandoned
)

func (r StopReason) String() string {
	switch r {
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Paginator follows Link headers from a first request until the API runs out
// of pages, the continuation policy declines, or a request fails. Pages are
// fetched one at a time and decoded into P. Progress is logged through the
// logger carried by the context given to Items.
//
// A Paginator is single-pass and not safe for concurrent use.
type Paginator[P, T any] struct {
	client  interfaces.APIClient
	cursor  Cursor
	extract Extractor[P, T]
	proceed Continuation[T]

	pages  int
	reason StopReason
	err    error
}

// New creates a Paginator starting at first.
func New[P, T any](client interfaces.APIClient, first *http.Request, extract Extractor[P, T], proceed Continuation[T]) *Paginator[P, T] {
	if proceed == nil {
		proceed = Always[T]
	}
	return &Paginator[P, T]{
		client:  client,
		cursor:  Fetch(first),
		extract: extract,
		proceed: proceed,
	}
}

// Items returns the lazy item sequence. Iteration ends early when a page
// cannot be fetched; check Err afterwards to tell failure from exhaustion.
func (p *Paginator[P, T]) Items(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for !p.cursor.Done() {
			items, next, reason, err := p.step(ctx, p.cursor.Request())
			p.cursor = next
			for _, item := range items {
				if !yield(item) {
					p.cursor = End
					p.finish(ctx, Abandoned, nil)
					return
				}
			}
			if next.Done() {
				p.finish(ctx, reason, err)
			}
		}
	}
}

// Collect drains the remaining pages into a slice.
func (p *Paginator[P, T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for item := range p.Items(ctx) {
		all = append(all, item)
	}
	return all, p.Err()
}

// Err returns the failure that ended iteration, if any.
func (p *Paginator[P, T]) Err() error {
	return p.err
}

// Reason returns why the paginator stopped.
func (p *Paginator[P, T]) Reason() StopReason {
	return p.reason
}

// Pages returns how many pages were fetched successfully.
func (p *Paginator[P, T]) Pages() int {
	return p.pages
}

func (p *Paginator[P, T]) step(ctx context.Context, req *http.Request) ([]T, Cursor, StopReason, error) {
	ctxlog.From(ctx).Debug("fetching page",
		slog.String("url", req.URL.String()),
		slog.Int("page", p.pages+1),
	)

	var page P
	resp, err := p.client.Do(ctx, req, &page)
	if err != nil {
		return nil, End, Failed, domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to fetch page",
			goerr.V("url", req.URL.String()),
			goerr.V("page", p.pages+1),
		))
	}
	p.pages++

	items := p.extract(&page)

	link := NextLink(resp.Header.Get("Link"))
	if link == "" {
		return items, End, Exhausted, nil
	}
	if !p.proceed(items) {
		return items, End, Stopped, nil
	}

	next, err := p.client.NewRequest(http.MethodGet, link, nil)
	if err != nil {
		return items, End, Failed, domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to build next page request",
			goerr.V("url", link),
			goerr.V("page", p.pages+1),
		))
	}
	return items, Fetch(next), Running, nil
}

func (p *Paginator[P, T]) finish(ctx context.Context, reason StopReason, err error) {
	p.reason = reason
	p.err = err

	logger := ctxlog.From(ctx)
	if err != nil {
		logger.Warn("pagination failed",
			slog.Int("pages", p.pages),
			slog.String("reason", reason.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("pagination finished",
		slog.Int("pages", p.pages),
		slog.String("reason", reason.String()),
	)
}
