package pagination

import "time"

// Continuation decides, from the items of the page just fetched, whether
// the next page is worth fetching.
type Continuation[T any] func(items []T) bool

// Always exhausts every page.
func Always[T any](_ []T) bool {
	return true
}

// Since continues while a page may still hold items created at or after
// cutoff. It assumes pages are ordered newest first: once a whole page is
// older than cutoff, every later page is too. It bounds page fetches only;
// callers still filter individual items.
func Since[T any](cutoff time.Time, createdAt func(T) time.Time) Continuation[T] {
	return func(items []T) bool {
		for _, item := range items {
			if !createdAt(item).Before(cutoff) {
				return true
			}
		}
		return false
	}
}
