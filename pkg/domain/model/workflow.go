package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/goerr/v2"
)

const workflowDir = ".github/workflows/"

type WorkflowStatus string

const (
	WorkflowStatusQueued     WorkflowStatus = "queued"
	WorkflowStatusInProgress WorkflowStatus = "in_progress"
	WorkflowStatusCompleted  WorkflowStatus = "completed"
)

type WorkflowConclusion string

const (
	WorkflowConclusionNone      WorkflowConclusion = ""
	WorkflowConclusionSuccess   WorkflowConclusion = "success"
	WorkflowConclusionFailure   WorkflowConclusion = "failure"
	WorkflowConclusionCancelled WorkflowConclusion = "cancelled"
	WorkflowConclusionSkipped   WorkflowConclusion = "skipped"
	WorkflowConclusionTimedOut  WorkflowConclusion = "timed_out"
)

// Workflow is a workflow definition declared in a repository.
type Workflow struct {
	ID    int64
	Name  string
	State string
	Path  string
}

// Filename returns the workflow file name relative to .github/workflows.
// The runs endpoint accepts it in place of the numeric ID.
func (w *Workflow) Filename() string {
	return strings.ReplaceAll(w.Path, workflowDir, "")
}

// MatchWorkflowName reports whether name contains filter, ignoring case.
// An empty filter matches every workflow.
func MatchWorkflowName(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

type WorkflowRun struct {
	ID           int64
	Name         string
	HeadBranch   string
	Event        string
	Status       WorkflowStatus
	Conclusion   WorkflowConclusion
	JobsURL      string
	LogsURL      string
	ArtifactsURL string
	CancelURL    string
	RerunURL     string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Duration is the wall time between creation and the last update of the run.
func (r *WorkflowRun) Duration() (time.Duration, error) {
	d := r.UpdatedAt.Sub(r.CreatedAt)
	if d < 0 {
		return 0, domain.ErrInvalidDuration.Wrap(goerr.New("negative run duration",
			goerr.V("run_id", r.ID),
			goerr.V("created_at", r.CreatedAt),
			goerr.V("updated_at", r.UpdatedAt),
		))
	}
	return d, nil
}

// WorkflowUsage is the billable time of a workflow for the current billing cycle.
type WorkflowUsage struct {
	Ubuntu  time.Duration
	MacOS   time.Duration
	Windows time.Duration
}

func (u WorkflowUsage) Total() time.Duration {
	return u.Ubuntu + u.MacOS + u.Windows
}
