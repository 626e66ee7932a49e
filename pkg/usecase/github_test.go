package usecase_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/actions/pkg/usecase"
	"github.com/m-mizutani/gt"
	"golang.org/x/crypto/nacl/box"
)

func TestParseGitHubURL(t *testing.T) {
	testCases := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
	}{
		{
			name:      "SSH URL",
			url:       "git@github.com:octocat/hello-world.git",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "HTTPS URL",
			url:       "https://github.com/octocat/hello-world.git",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "SSH URL with ssh://",
			url:       "ssh://git@github.com/octocat/hello-world.git",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "Without .git suffix",
			url:       "https://github.com/octocat/hello-world",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:      "Nested path",
			url:       "https://github.com/octocat/hello-world/tree",
			wantOwner: "",
			wantRepo:  "",
		},
		{
			name:      "Invalid URL",
			url:       "https://example.com/something",
			wantOwner: "",
			wantRepo:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo := usecase.ParseGitHubURL(tc.url)
			gt.Equal(t, owner, tc.wantOwner)
			gt.Equal(t, repo, tc.wantRepo)
		})
	}
}

func newService(t *testing.T, handler http.Handler) *usecase.ActionsService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := usecase.NewGitHubClient(context.Background(), "test-token", server.URL)
	gt.NoError(t, err)
	return usecase.NewActionsService(client)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	gt.NoError(t, json.NewEncoder(w).Encode(v))
}

var testRepo = model.Repository{Owner: "octocat", Name: "hello-world"}

func TestLookupToken(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := usecase.LookupToken(func(string) (string, bool) { return "", false })
		gt.Error(t, err)
		gt.True(t, errors.Is(err, domain.ErrConfiguration))
	})

	t.Run("blank token", func(t *testing.T) {
		_, err := usecase.LookupToken(func(string) (string, bool) { return "  ", true })
		gt.True(t, errors.Is(err, domain.ErrConfiguration))
	})

	t.Run("token present", func(t *testing.T) {
		token, err := usecase.LookupToken(func(key string) (string, bool) {
			gt.Equal(t, key, usecase.TokenEnv)
			return "abc", true
		})
		gt.NoError(t, err)
		gt.Equal(t, token, "abc")
	})
}

func TestRepositories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/code", func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Header.Get("Authorization"), "Bearer test-token")
		gt.Equal(t, r.Header.Get("User-Agent"), "actions")
		gt.Equal(t, r.URL.Query().Get("q"), "org:octocat path:.github/workflows")
		gt.Equal(t, r.URL.Query().Get("per_page"), "100")

		item := func(repo, path string) map[string]any {
			return map[string]any{
				"path":       path,
				"repository": map[string]any{"full_name": repo},
			}
		}
		writeJSON(t, w, map[string]any{
			"total_count": 3,
			"items": []any{
				item("octocat/zeta", ".github/workflows/ci.yml"),
				item("octocat/alpha", ".github/workflows/ci.yml"),
				item("octocat/zeta", ".github/workflows/release.yml"),
			},
		})
	})

	repos, err := newService(t, mux).Repositories(context.Background(), "octocat")
	gt.NoError(t, err)
	gt.Equal(t, len(repos), 2)
	gt.Equal(t, repos[0].FullName, "octocat/alpha")
	gt.Equal(t, repos[1].FullName, "octocat/zeta")
	gt.Equal(t, repos[1].Workflows, []string{".github/workflows/ci.yml", ".github/workflows/release.yml"})
}

func TestRepositoriesFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/code", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
	})

	_, err := newService(t, mux).Repositories(context.Background(), "octocat")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, domain.ErrAPIRequest))
}

func TestRunsRequest(t *testing.T) {
	var called bool
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/actions/workflows/ci.yml/runs", func(w http.ResponseWriter, r *http.Request) {
		called = true
		gt.Equal(t, r.URL.Query().Get("status"), "completed")
		gt.Equal(t, r.URL.Query().Get("per_page"), "100")
		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"workflow_runs": []any{
				map[string]any{
					"id":          1,
					"name":        "CI",
					"status":      "completed",
					"conclusion":  "failure",
					"html_url":    "https://github.com/octocat/hello-world/actions/runs/1",
					"created_at":  "2024-05-01T00:00:00Z",
					"updated_at":  "2024-05-01T00:01:30Z",
					"head_branch": "main",
				},
			},
		})
	})

	svc := newService(t, mux)
	workflow := &model.Workflow{ID: 7, Name: "CI", Path: ".github/workflows/ci.yml"}
	p, err := svc.Runs(testRepo, workflow, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	gt.NoError(t, err)

	runs, err := p.Collect(context.Background())
	gt.NoError(t, err)
	gt.True(t, called)
	gt.Equal(t, len(runs), 1)
	gt.Equal(t, runs[0].Conclusion, model.WorkflowConclusionFailure)
	gt.Equal(t, runs[0].Status, model.WorkflowStatusCompleted)
	gt.Equal(t, runs[0].HeadBranch, "main")

	d, err := runs[0].Duration()
	gt.NoError(t, err)
	gt.Equal(t, d, 90*time.Second)
}

func TestWorkflowUsage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/actions/workflows/7/timing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"billable": map[string]any{
				"UBUNTU":  map[string]any{"total_ms": 180000},
				"WINDOWS": map[string]any{"total_ms": 60000},
			},
		})
	})

	usage, err := newService(t, mux).WorkflowUsage(context.Background(), testRepo, &model.Workflow{ID: 7, Name: "CI"})
	gt.NoError(t, err)
	gt.Equal(t, usage.Ubuntu, 3*time.Minute)
	gt.Equal(t, usage.MacOS, time.Duration(0))
	gt.Equal(t, usage.Windows, time.Minute)
	gt.Equal(t, usage.Total(), 4*time.Minute)
}

func TestCreateSecret(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	gt.NoError(t, err)

	var stored struct {
		KeyID          string `json:"key_id"`
		EncryptedValue string `json:"encrypted_value"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/actions/secrets/public-key", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"key_id": "key-1",
			"key":    base64.StdEncoding.EncodeToString(pub[:]),
		})
	})
	mux.HandleFunc("/repos/octocat/hello-world/actions/secrets/DEPLOY_TOKEN", func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Method, http.MethodPut)
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
		w.WriteHeader(http.StatusCreated)
	})

	err = newService(t, mux).CreateSecret(context.Background(), testRepo, "DEPLOY_TOKEN", "s3cr3t")
	gt.NoError(t, err)
	gt.Equal(t, stored.KeyID, "key-1")

	sealed, err := base64.StdEncoding.DecodeString(stored.EncryptedValue)
	gt.NoError(t, err)
	plain, ok := box.OpenAnonymous(nil, sealed, pub, priv)
	gt.True(t, ok)
	gt.Equal(t, string(plain), "s3cr3t")
}

func TestDeleteArtifactFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/actions/artifacts/42", func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Method, http.MethodDelete)
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	err := newService(t, mux).DeleteArtifact(context.Background(), testRepo, 42)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, domain.ErrAPIRequest))
}
