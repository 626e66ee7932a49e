package pagination_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/pagination"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
)

type numberPage struct {
	Numbers []int `json:"numbers"`
}

func numbers(page *numberPage) []int {
	return page.Numbers
}

// newNumberServer serves pages[i] for ?page=i+1 and links each page to the next.
func newNumberServer(t *testing.T, pages [][]int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			_, _ = fmt.Sscanf(p, "%d", &page)
		}
		if page > len(pages) {
			t.Errorf("unexpected page %d", page)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if page < len(pages) {
			next := fmt.Sprintf("%s/numbers?page=%d", server.URL, page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s/numbers?page=%d>; rel="last"`, next, server.URL, len(pages)))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(numberPage{Numbers: pages[page-1]})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *github.Client {
	t.Helper()
	client := github.NewClient(server.Client())
	base, err := url.Parse(server.URL + "/")
	gt.NoError(t, err)
	client.BaseURL = base
	return client
}

func newPaginator(t *testing.T, client *github.Client, proceed pagination.Continuation[int]) *pagination.Paginator[numberPage, int] {
	t.Helper()
	req, err := client.NewRequest(http.MethodGet, "numbers", nil)
	gt.NoError(t, err)
	return pagination.New(client, req, numbers, proceed)
}

func TestPaginator(t *testing.T) {
	ctx := context.Background()

	t.Run("follows next links until exhausted", func(t *testing.T) {
		var requests atomic.Int32
		server := newNumberServer(t, [][]int{{1, 2}, {3}, {4, 5, 6}}, &requests)
		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])

		items, err := p.Collect(ctx)
		gt.NoError(t, err)
		gt.Equal(t, items, []int{1, 2, 3, 4, 5, 6})
		gt.Equal(t, p.Reason(), pagination.Exhausted)
		gt.Equal(t, p.Pages(), 3)
		gt.Equal(t, requests.Load(), int32(3))
	})

	t.Run("single page without link header", func(t *testing.T) {
		var requests atomic.Int32
		server := newNumberServer(t, [][]int{{7}}, &requests)
		p := newPaginator(t, newTestClient(t, server), nil)

		items, err := p.Collect(ctx)
		gt.NoError(t, err)
		gt.Equal(t, items, []int{7})
		gt.Equal(t, requests.Load(), int32(1))
	})

	t.Run("continuation policy stops fetching", func(t *testing.T) {
		var requests atomic.Int32
		server := newNumberServer(t, [][]int{{1, 2}, {3}, {4}}, &requests)
		// continue only while the page holds an even number
		p := newPaginator(t, newTestClient(t, server), func(items []int) bool {
			for _, n := range items {
				if n%2 == 0 {
					return true
				}
			}
			return false
		})

		items, err := p.Collect(ctx)
		gt.NoError(t, err)
		gt.Equal(t, items, []int{1, 2, 3})
		gt.Equal(t, p.Reason(), pagination.Stopped)
		gt.Equal(t, requests.Load(), int32(2))
	})

	t.Run("request failure ends the sequence with an error", func(t *testing.T) {
		var requests atomic.Int32
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.URL.Query().Get("page") == "2" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/numbers?page=2>; rel="next"`, server.URL))
			_ = json.NewEncoder(w).Encode(numberPage{Numbers: []int{1, 2}})
		}))
		defer server.Close()

		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])

		items, err := p.Collect(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, domain.ErrAPIRequest))
		gt.Equal(t, items, []int{1, 2})
		gt.Equal(t, p.Reason(), pagination.Failed)
		gt.Equal(t, p.Pages(), 1)
		gt.Equal(t, requests.Load(), int32(2))
	})

	t.Run("unusable next link is reported as request failure", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Header().Set("Link", `<http://[::1>; rel="next"`)
			_ = json.NewEncoder(w).Encode(numberPage{Numbers: []int{1}})
		}))
		defer server.Close()

		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])

		items, err := p.Collect(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, domain.ErrAPIRequest))
		gt.Equal(t, items, []int{1})
		gt.Equal(t, p.Reason(), pagination.Failed)
		gt.Equal(t, p.Pages(), 1)
		gt.Equal(t, requests.Load(), int32(1))
	})

	t.Run("decode failure is reported as failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"numbers": "not a list"}`))
		}))
		defer server.Close()

		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])

		items, err := p.Collect(ctx)
		gt.Error(t, err)
		gt.Equal(t, len(items), 0)
		gt.Equal(t, p.Reason(), pagination.Failed)
	})

	t.Run("stopping early abandons remaining pages", func(t *testing.T) {
		var requests atomic.Int32
		server := newNumberServer(t, [][]int{{1, 2}, {3}}, &requests)
		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])

		for n := range p.Items(ctx) {
			gt.Equal(t, n, 1)
			break
		}
		gt.NoError(t, p.Err())
		gt.Equal(t, p.Reason(), pagination.Abandoned)
		gt.Equal(t, requests.Load(), int32(1))

		// single pass: nothing left to iterate
		count := 0
		for range p.Items(ctx) {
			count++
		}
		gt.Equal(t, count, 0)
		gt.Equal(t, requests.Load(), int32(1))
	})
}

func TestPaginatorLogging(t *testing.T) {
	t.Run("failure is logged as a warning", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, capture := ctxlog.NewCapture(context.Background())
		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])
		_, err := p.Collect(ctx)
		gt.Error(t, err)

		gt.A(t, capture.Messages()).Has("pagination failed")
		records := capture.Records()
		gt.A(t, records).Longer(0).Required()
		gt.Equal(t, records[len(records)-1].Level, slog.LevelWarn)
	})

	t.Run("exhaustion logs no warning", func(t *testing.T) {
		var requests atomic.Int32
		server := newNumberServer(t, [][]int{{1}, {2}}, &requests)

		ctx, capture := ctxlog.NewCapture(context.Background())
		p := newPaginator(t, newTestClient(t, server), pagination.Always[int])
		_, err := p.Collect(ctx)
		gt.NoError(t, err)

		gt.Equal(t, p.Reason(), pagination.Exhausted)
		gt.A(t, capture.Messages()).NotHas("pagination failed")
	})
}
