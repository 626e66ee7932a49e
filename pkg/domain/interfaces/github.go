package interfaces

import (
	"context"
	"net/http"

	"github.com/google/go-github/v74/github"
)

// APIClient issues prepared requests against the GitHub REST API.
// *github.Client satisfies it.
type APIClient interface {
	NewRequest(method, urlStr string, body any, opts ...github.RequestOption) (*http.Request, error)
	Do(ctx context.Context, req *http.Request, v any) (*github.Response, error)
}
