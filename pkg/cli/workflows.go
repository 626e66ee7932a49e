package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/actions/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func newWorkflowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "workflows",
		Usage: "Get workflow information",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List declared workflows",
				Flags:  []cli.Flag{repositoryFlag(), workflowFlag()},
				Action: withHandler(workflowsListAction),
			},
			{
				Name:   "usage",
				Usage:  "List billable time of declared workflows in the current billing cycle",
				Flags:  []cli.Flag{repositoryFlag(), workflowFlag()},
				Action: withHandler(workflowsUsageAction),
			},
		},
	}
}

// workflows lists the workflows of repo that match the workflow filter.
func (h *handler) workflows(ctx context.Context, repo model.Repository) ([]*model.Workflow, error) {
	p, err := h.actions.Workflows(repo)
	if err != nil {
		return nil, err
	}

	var workflows []*model.Workflow
	for w := range usecase.FilterWorkflows(p.Items(ctx), h.config.Workflow) {
		workflows = append(workflows, w)
	}
	if err := p.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to list workflows", goerr.V("repo", repo.FullName()))
	}
	return workflows, nil
}

func workflowsListAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	workflows, err := h.workflows(ctx, repo)
	if err != nil {
		return err
	}

	t := newTable("Workflow", "Path").withStyle(boldFirst)
	for _, w := range workflows {
		t.add(w.Name, w.Path)
	}
	return t.render(h.out, h.config.Format)
}

func workflowsUsageAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	workflows, err := h.workflows(ctx, repo)
	if err != nil {
		return err
	}

	var total time.Duration
	t := newTable("Workflow", "Linux", "MacOS", "Windows").withStyle(boldFirst)
	for _, w := range workflows {
		usage, err := h.actions.WorkflowUsage(ctx, repo, w)
		if err != nil {
			return err
		}
		total += usage.Total()
		t.add(w.Name, formatDuration(usage.Ubuntu), formatDuration(usage.MacOS), formatDuration(usage.Windows))
	}

	if err := t.render(h.out, h.config.Format); err != nil {
		return err
	}
	return h.printTotal(total)
}

// printTotal closes tab output with the whole minutes in total. CSV output
// stays a single table.
func (h *handler) printTotal(total time.Duration) error {
	if h.config.Format == model.FormatCSV {
		return nil
	}
	return writeTotal(h.out, total)
}

func writeTotal(w io.Writer, total time.Duration) error {
	minutes := int64(total / time.Minute)
	if _, err := fmt.Fprintf(w, "\nTotal minutes spent %s\n", color.New(color.Bold).Sprint(minutes)); err != nil {
		return goerr.Wrap(err, "failed to write total")
	}
	return nil
}
