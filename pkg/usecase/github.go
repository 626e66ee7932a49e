package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/google/go-querystring/query"
	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/actions/pkg/pagination"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

const perPage = 100

// listOptions are the query parameters shared by the list endpoints.
type listOptions struct {
	Query   string `url:"q,omitempty"`
	Status  string `url:"status,omitempty"`
	PerPage int    `url:"per_page,omitempty"`
}

// ActionsService wraps the GitHub Actions endpoints. Logs go to the logger
// carried by the request context.
type ActionsService struct {
	client *github.Client
}

func NewActionsService(client *github.Client) *ActionsService {
	return &ActionsService{
		client: client,
	}
}

func (s *ActionsService) newListRequest(path string, opts listOptions) (*http.Request, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode list options")
	}
	if q := values.Encode(); q != "" {
		path += "?" + q
	}
	req, err := s.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	return req, nil
}

// SearchWorkflowFiles lists every workflow definition file in an organization
// through code search.
func (s *ActionsService) SearchWorkflowFiles(org string) (*pagination.Paginator[github.CodeSearchResult, *model.CodeHit], error) {
	req, err := s.newListRequest("search/code", listOptions{
		Query:   fmt.Sprintf("org:%s path:.github/workflows", org),
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	return pagination.New(s.client, req, func(page *github.CodeSearchResult) []*model.CodeHit {
		hits := make([]*model.CodeHit, 0, len(page.CodeResults))
		for _, result := range page.CodeResults {
			hits = append(hits, &model.CodeHit{
				Repository: result.GetRepository().GetFullName(),
				Path:       result.GetPath(),
			})
		}
		return hits
	}, pagination.Always[*model.CodeHit]), nil
}

// Repositories returns the repositories of org that declare workflows.
func (s *ActionsService) Repositories(ctx context.Context, org string) ([]*model.DiscoveredRepo, error) {
	p, err := s.SearchWorkflowFiles(org)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With(slog.String("org", org)))
	repos := GroupByRepository(p.Items(ctx))
	if err := p.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to search workflow files", goerr.V("org", org))
	}
	return repos, nil
}

// Workflows lists the workflows declared in repo.
func (s *ActionsService) Workflows(repo model.Repository) (*pagination.Paginator[github.Workflows, *model.Workflow], error) {
	req, err := s.newListRequest(fmt.Sprintf("repos/%s/%s/actions/workflows", repo.Owner, repo.Name), listOptions{
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	return pagination.New(s.client, req, func(page *github.Workflows) []*model.Workflow {
		workflows := make([]*model.Workflow, 0, len(page.Workflows))
		for _, w := range page.Workflows {
			workflows = append(workflows, convertWorkflow(w))
		}
		return workflows
	}, pagination.Always[*model.Workflow]), nil
}

// Runs lists completed runs of workflow, newest first. Fetching stops at the
// first page whose runs are all older than since; callers still need to
// drop older runs from the last page.
func (s *ActionsService) Runs(repo model.Repository, workflow *model.Workflow, since time.Time) (*pagination.Paginator[github.WorkflowRuns, *model.WorkflowRun], error) {
	path := fmt.Sprintf("repos/%s/%s/actions/workflows/%s/runs", repo.Owner, repo.Name, url.PathEscape(workflow.Filename()))
	req, err := s.newListRequest(path, listOptions{
		Status:  string(model.WorkflowStatusCompleted),
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	return pagination.New(s.client, req, func(page *github.WorkflowRuns) []*model.WorkflowRun {
		runs := make([]*model.WorkflowRun, 0, len(page.WorkflowRuns))
		for _, run := range page.WorkflowRuns {
			runs = append(runs, convertRun(run))
		}
		return runs
	}, pagination.Since(since, func(run *model.WorkflowRun) time.Time {
		return run.CreatedAt
	})), nil
}

// Artifacts lists the artifacts produced by a workflow run.
func (s *ActionsService) Artifacts(repo model.Repository, runID int64) (*pagination.Paginator[github.ArtifactList, *model.Artifact], error) {
	req, err := s.newListRequest(fmt.Sprintf("repos/%s/%s/actions/runs/%d/artifacts", repo.Owner, repo.Name, runID), listOptions{
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	return pagination.New(s.client, req, func(page *github.ArtifactList) []*model.Artifact {
		artifacts := make([]*model.Artifact, 0, len(page.Artifacts))
		for _, a := range page.Artifacts {
			artifacts = append(artifacts, &model.Artifact{
				ID:          a.GetID(),
				Name:        a.GetName(),
				SizeInBytes: a.GetSizeInBytes(),
				DownloadURL: a.GetArchiveDownloadURL(),
			})
		}
		return artifacts
	}, pagination.Always[*model.Artifact]), nil
}

// Secrets lists repository secrets without their values.
func (s *ActionsService) Secrets(repo model.Repository) (*pagination.Paginator[github.Secrets, *model.Secret], error) {
	req, err := s.newListRequest(fmt.Sprintf("repos/%s/%s/actions/secrets", repo.Owner, repo.Name), listOptions{
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	return pagination.New(s.client, req, func(page *github.Secrets) []*model.Secret {
		secrets := make([]*model.Secret, 0, len(page.Secrets))
		for _, secret := range page.Secrets {
			secrets = append(secrets, convertSecret(secret))
		}
		return secrets
	}, pagination.Always[*model.Secret]), nil
}

func (s *ActionsService) DeleteArtifact(ctx context.Context, repo model.Repository, artifactID int64) error {
	if _, err := s.client.Actions.DeleteArtifact(ctx, repo.Owner, repo.Name, artifactID); err != nil {
		return domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to delete artifact",
			goerr.V("repo", repo.FullName()),
			goerr.V("artifact_id", artifactID),
		))
	}
	ctxlog.From(ctx).Info("artifact deleted",
		slog.String("repo", repo.FullName()),
		slog.Int64("artifact_id", artifactID),
	)
	return nil
}

func (s *ActionsService) GetSecret(ctx context.Context, repo model.Repository, name string) (*model.Secret, error) {
	secret, _, err := s.client.Actions.GetRepoSecret(ctx, repo.Owner, repo.Name, name)
	if err != nil {
		return nil, domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to get secret",
			goerr.V("repo", repo.FullName()),
			goerr.V("name", name),
		))
	}
	return convertSecret(secret), nil
}

func (s *ActionsService) DeleteSecret(ctx context.Context, repo model.Repository, name string) error {
	if _, err := s.client.Actions.DeleteRepoSecret(ctx, repo.Owner, repo.Name, name); err != nil {
		return domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to delete secret",
			goerr.V("repo", repo.FullName()),
			goerr.V("name", name),
		))
	}
	ctxlog.From(ctx).Info("secret deleted",
		slog.String("repo", repo.FullName()),
		slog.String("name", name),
	)
	return nil
}

// PublicKey fetches the key that secret values must be sealed to.
func (s *ActionsService) PublicKey(ctx context.Context, repo model.Repository) (*model.PublicKey, error) {
	key, _, err := s.client.Actions.GetRepoPublicKey(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to get public key",
			goerr.V("repo", repo.FullName()),
		))
	}
	return &model.PublicKey{
		KeyID: key.GetKeyID(),
		Key:   key.GetKey(),
	}, nil
}

// CreateSecret seals value to the repository public key and stores it under
// name, replacing any existing secret of that name.
func (s *ActionsService) CreateSecret(ctx context.Context, repo model.Repository, name, value string) error {
	key, err := s.PublicKey(ctx, repo)
	if err != nil {
		return err
	}

	encrypted, err := SealSecret(key.Key, []byte(value))
	if err != nil {
		return err
	}

	_, err = s.client.Actions.CreateOrUpdateRepoSecret(ctx, repo.Owner, repo.Name, &github.EncryptedSecret{
		Name:           name,
		KeyID:          key.KeyID,
		EncryptedValue: encrypted,
	})
	if err != nil {
		return domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to create secret",
			goerr.V("repo", repo.FullName()),
			goerr.V("name", name),
		))
	}
	ctxlog.From(ctx).Info("secret stored",
		slog.String("repo", repo.FullName()),
		slog.String("name", name),
	)
	return nil
}

type workflowTiming struct {
	Billable map[string]struct {
		TotalMS int64 `json:"total_ms"`
	} `json:"billable"`
}

// WorkflowUsage returns the billable time of workflow in the current
// billing cycle, per runner OS.
func (s *ActionsService) WorkflowUsage(ctx context.Context, repo model.Repository, workflow *model.Workflow) (*model.WorkflowUsage, error) {
	path := fmt.Sprintf("repos/%s/%s/actions/workflows/%d/timing", repo.Owner, repo.Name, workflow.ID)
	req, err := s.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}

	var timing workflowTiming
	if _, err := s.client.Do(ctx, req, &timing); err != nil {
		return nil, domain.ErrAPIRequest.Wrap(goerr.Wrap(err, "failed to get workflow usage",
			goerr.V("repo", repo.FullName()),
			goerr.V("workflow", workflow.Name),
		))
	}

	ms := func(os string) time.Duration {
		return time.Duration(timing.Billable[os].TotalMS) * time.Millisecond
	}
	return &model.WorkflowUsage{
		Ubuntu:  ms("UBUNTU"),
		MacOS:   ms("MACOS"),
		Windows: ms("WINDOWS"),
	}, nil
}

// GetRepositoryInfo reads the GitHub repository of the git checkout at
// repoPath from its origin remote.
func (s *ActionsService) GetRepositoryInfo(ctx context.Context, repoPath string) (*model.Repository, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, domain.ErrRepository.Wrap(err)
	}

	remoteURL := strings.TrimSpace(string(output))
	owner, name := parseGitHubURL(remoteURL)
	if owner == "" || name == "" {
		return nil, domain.ErrRepository.Wrap(goerr.New("failed to parse GitHub URL: " + remoteURL))
	}

	return &model.Repository{
		Owner: owner,
		Name:  name,
	}, nil
}

func parseGitHubURL(remote string) (owner, repo string) {
	remote = strings.TrimSuffix(remote, ".git")

	for _, prefix := range []string{"git@github.com:", "https://github.com/", "ssh://git@github.com/"} {
		if !strings.HasPrefix(remote, prefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(remote, prefix), "/")
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
	}

	return "", ""
}

func convertWorkflow(w *github.Workflow) *model.Workflow {
	return &model.Workflow{
		ID:    w.GetID(),
		Name:  w.GetName(),
		State: w.GetState(),
		Path:  w.GetPath(),
	}
}

func convertRun(run *github.WorkflowRun) *model.WorkflowRun {
	return &model.WorkflowRun{
		ID:           run.GetID(),
		Name:         run.GetName(),
		HeadBranch:   run.GetHeadBranch(),
		Event:        run.GetEvent(),
		Status:       convertStatus(run.GetStatus()),
		Conclusion:   convertConclusion(run.GetConclusion()),
		JobsURL:      run.GetJobsURL(),
		LogsURL:      run.GetLogsURL(),
		ArtifactsURL: run.GetArtifactsURL(),
		CancelURL:    run.GetCancelURL(),
		RerunURL:     run.GetRerunURL(),
		URL:          run.GetHTMLURL(),
		CreatedAt:    run.GetCreatedAt().Time,
		UpdatedAt:    run.GetUpdatedAt().Time,
	}
}

func convertSecret(secret *github.Secret) *model.Secret {
	return &model.Secret{
		Name:      secret.Name,
		CreatedAt: secret.CreatedAt.Time,
		UpdatedAt: secret.UpdatedAt.Time,
	}
}

func convertStatus(status string) model.WorkflowStatus {
	switch status {
	case "queued":
		return model.WorkflowStatusQueued
	case "in_progress":
		return model.WorkflowStatusInProgress
	case "completed":
		return model.WorkflowStatusCompleted
	default:
		return model.WorkflowStatus(status)
	}
}

func convertConclusion(conclusion string) model.WorkflowConclusion {
	switch conclusion {
	case "":
		return model.WorkflowConclusionNone
	case "success":
		return model.WorkflowConclusionSuccess
	case "failure":
		return model.WorkflowConclusionFailure
	case "cancelled":
		return model.WorkflowConclusionCancelled
	case "skipped":
		return model.WorkflowConclusionSkipped
	case "timed_out":
		return model.WorkflowConclusionTimedOut
	default:
		return model.WorkflowConclusion(conclusion)
	}
}
