package usecase

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// AggregateRuns folds the durations of runs created at or after since. A run
// whose duration is negative aborts the fold.
func AggregateRuns(since time.Time, runs iter.Seq[*model.WorkflowRun]) (model.RunStats, error) {
	var stats model.RunStats
	for run := range runs {
		if run.CreatedAt.Before(since) {
			continue
		}
		d, err := run.Duration()
		if err != nil {
			return stats, err
		}
		stats.Add(d)
	}
	return stats, nil
}

// FilterWorkflows keeps the workflows whose name matches filter.
func FilterWorkflows(workflows iter.Seq[*model.Workflow], filter string) iter.Seq[*model.Workflow] {
	return func(yield func(*model.Workflow) bool) {
		for w := range workflows {
			if !model.MatchWorkflowName(w.Name, filter) {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

// StatsFunc computes the statistics of one workflow.
type StatsFunc func(ctx context.Context, workflow *model.Workflow) (model.RunStats, error)

// DispatchStats runs compute for every workflow with at most limit pipelines
// in flight. Results are handed to emit from a single goroutine in completion
// order. A failed pipeline is emitted with Err set and left out of the total;
// the others keep running. Each pipeline logs with the workflow name attached.
func DispatchStats(ctx context.Context, workflows iter.Seq[*model.Workflow], compute StatsFunc, limit int, emit func(*model.WorkflowStats)) *model.StatsSummary {
	if limit <= 0 {
		limit = model.DefaultConcurrency
	}

	results := make(chan *model.WorkflowStats)
	summary := &model.StatsSummary{}

	var consumer sync.WaitGroup
	consumer.Add(1)
	go func() {
		defer consumer.Done()
		for result := range results {
			summary.Workflows++
			if result.Err != nil {
				summary.Failed++
			} else {
				summary.Total += result.Stats.Total
			}
			emit(result)
		}
	}()

	logger := ctxlog.From(ctx)
	var g errgroup.Group
	g.SetLimit(limit)
	for workflow := range workflows {
		g.Go(func() error {
			ctx := ctxlog.With(ctx, logger.With(slog.String("workflow", workflow.Name)))
			stats, err := compute(ctx, workflow)
			results <- &model.WorkflowStats{
				Workflow: workflow,
				Stats:    stats,
				Err:      err,
			}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	consumer.Wait()

	return summary
}

// RunStats aggregates the completed runs of workflow created since the cutoff.
func (s *ActionsService) RunStats(ctx context.Context, repo model.Repository, workflow *model.Workflow, since time.Time) (model.RunStats, error) {
	p, err := s.Runs(repo, workflow, since)
	if err != nil {
		return model.RunStats{}, err
	}

	stats, err := AggregateRuns(since, p.Items(ctx))
	if err != nil {
		return stats, goerr.Wrap(err, "failed to aggregate runs", goerr.V("workflow", workflow.Name))
	}
	if err := p.Err(); err != nil {
		return stats, err
	}

	ctxlog.From(ctx).Debug("runs aggregated",
		slog.Int("count", stats.Count),
		slog.Int("pages", p.Pages()),
	)
	return stats, nil
}

// Stats computes run statistics for every workflow of repo matching filter,
// limit pipelines at a time.
func (s *ActionsService) Stats(ctx context.Context, repo model.Repository, filter string, since time.Time, limit int, emit func(*model.WorkflowStats)) (*model.StatsSummary, error) {
	p, err := s.Workflows(repo)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx).With(slog.String("repo", repo.FullName()))
	ctx = ctxlog.With(ctx, logger)

	summary := DispatchStats(ctx, FilterWorkflows(p.Items(ctx), filter), func(ctx context.Context, workflow *model.Workflow) (model.RunStats, error) {
		return s.RunStats(ctx, repo, workflow, since)
	}, limit, emit)

	if err := p.Err(); err != nil {
		return summary, goerr.Wrap(err, "failed to list workflows", goerr.V("repo", repo.FullName()))
	}
	if summary.Failed > 0 {
		logger.Warn("some workflows failed",
			slog.Int("failed", summary.Failed),
			slog.Int("workflows", summary.Workflows),
		)
	}
	return summary, nil
}
