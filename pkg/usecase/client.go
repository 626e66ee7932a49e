package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const (
	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv = "GITHUB_TOKEN"

	userAgent = "actions"
)

// LookupToken reads the API token from the environment through lookup
// (os.LookupEnv in production). A missing or empty token is a
// configuration error.
func LookupToken(lookup func(string) (string, bool)) (string, error) {
	token, ok := lookup(TokenEnv)
	if !ok || strings.TrimSpace(token) == "" {
		return "", domain.ErrConfiguration.Wrap(goerr.New("Please provide a GITHUB_TOKEN env variable"))
	}
	return token, nil
}

// NewGitHubClient returns an API client that sends token as a bearer
// credential on every request. apiURL overrides the public API endpoint,
// for GitHub Enterprise Server or tests.
func NewGitHubClient(ctx context.Context, token, apiURL string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	client.UserAgent = userAgent

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, domain.ErrConfiguration.Wrap(goerr.Wrap(err, "invalid API URL", goerr.V("url", apiURL)))
		}
		client.BaseURL = base
	}

	return client, nil
}
