package pagination

import "net/http"

// Cursor points at the next page to fetch. It is either Fetch(req) or End.
// Cursors are replaced on every step, never mutated.
type Cursor struct {
	req *http.Request
}

// End is the terminal cursor.
var End = Cursor{}

// Fetch returns a cursor that will issue req.
func Fetch(req *http.Request) Cursor {
	return Cursor{req: req}
}

// Done reports whether c is the terminal cursor.
func (c Cursor) Done() bool {
	return c.req == nil
}

// Request returns the pending request, or nil for End.
func (c Cursor) Request() *http.Request {
	return c.req
}
