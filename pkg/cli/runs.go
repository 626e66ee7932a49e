package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

const failedMark = "failed"

func newRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Get workflow run information",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Summarize run durations per workflow",
				Flags:  []cli.Flag{repositoryFlag(), workflowFlag(), sinceFlag()},
				Action: withHandler(runsStatsAction),
			},
			{
				Name:   "list",
				Usage:  "List completed runs of a workflow",
				Flags:  []cli.Flag{repositoryFlag(), workflowFlag(), sinceFlag()},
				Action: withHandler(runsListAction),
			},
		},
	}
}

// newSpinner only animates when w is a terminal.
func newSpinner(w io.Writer, message string) *spinner.Spinner {
	f, ok := w.(*os.File)
	if !ok {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.Disable()
		return s
	}
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriterFile(f),
		spinner.WithSuffix(" "+message),
	)
}

func statsStyle(col int, value string) lipgloss.Style {
	switch {
	case col == 0:
		return nameStyle
	case col == 1 && value == failedMark:
		return failureStyle
	default:
		return plainStyle
	}
}

func runsStatsAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}
	since := h.since()

	t := newTable("Workflow", "Runs", "Total Duration", "Min Duration", "Max Duration").withStyle(statsStyle)
	logger := ctxlog.From(ctx)

	spin := newSpinner(errOutput(cmd), "Fetching run data...")
	spin.Start()
	summary, err := h.actions.Stats(ctx, repo, h.config.Workflow, since, h.config.Concurrency, func(row *model.WorkflowStats) {
		if row.Err != nil {
			logger.Warn("failed to compute workflow stats",
				slog.String("workflow", row.Workflow.Name),
				slog.Any("error", row.Err),
			)
			t.add(row.Workflow.Name, failedMark, "-", "-", "-")
			return
		}
		t.add(row.Workflow.Name,
			strconv.Itoa(row.Stats.Count),
			formatDuration(row.Stats.Total),
			formatOptionalDuration(row.Stats.Min),
			formatOptionalDuration(row.Stats.Max),
		)
	})
	spin.Stop()
	if err != nil {
		return err
	}

	if err := t.render(h.out, h.config.Format); err != nil {
		return err
	}
	return h.printTotal(summary.Total)
}

func runsListAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	if _, err := h.config.RequireWorkflow(); err != nil {
		return err
	}
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}
	since := h.since()

	workflows, err := h.workflows(ctx, repo)
	if err != nil {
		return err
	}

	t := newTable("ID", "Conclusion", "Duration", "URL").withStyle(func(col int, value string) lipgloss.Style {
		switch col {
		case 1:
			return conclusionStyle(value)
		case 3:
			return dimStyle
		default:
			return plainStyle
		}
	})

	for _, w := range workflows {
		p, err := h.actions.Runs(repo, w, since)
		if err != nil {
			return err
		}
		logger := ctxlog.From(ctx).With(slog.String("workflow", w.Name))
		for run := range p.Items(ctxlog.With(ctx, logger)) {
			if run.CreatedAt.Before(since) {
				continue
			}
			t.add(strconv.FormatInt(run.ID, 10), conclusionText(run.Conclusion), runDuration(logger, run), run.URL)
		}
		if err := p.Err(); err != nil {
			return err
		}
	}

	return t.render(h.out, h.config.Format)
}

func conclusionText(c model.WorkflowConclusion) string {
	if c == model.WorkflowConclusionNone {
		return "-"
	}
	return string(c)
}

func runDuration(logger *slog.Logger, run *model.WorkflowRun) string {
	d, err := run.Duration()
	if err != nil {
		logger.Warn("invalid run duration", slog.Int64("run_id", run.ID), slog.Any("error", err))
		return "-"
	}
	return formatDuration(d)
}
