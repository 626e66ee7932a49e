package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func newArtifactsCommand() *cli.Command {
	return &cli.Command{
		Name:  "artifacts",
		Usage: "Get workflow artifacts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List artifacts of a workflow run",
				Flags: []cli.Flag{
					repositoryFlag(),
					&cli.Int64Flag{
						Name:     "run-id",
						Usage:    "ID of the workflow run",
						Required: true,
					},
				},
				Action: withHandler(artifactsListAction),
			},
			{
				Name:  "delete",
				Usage: "Delete a workflow run artifact",
				Flags: []cli.Flag{
					repositoryFlag(),
					&cli.Int64Flag{
						Name:     "artifact-id",
						Aliases:  []string{"a"},
						Usage:    "ID of the artifact to delete",
						Required: true,
					},
				},
				Action: withHandler(artifactsDeleteAction),
			},
		},
	}
}

func artifactsListAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	p, err := h.actions.Artifacts(repo, cmd.Int64("run-id"))
	if err != nil {
		return err
	}

	t := newTable("ID", "Name", "Size").withStyle(func(col int, _ string) lipgloss.Style {
		if col == 1 {
			return nameStyle
		}
		return plainStyle
	})
	for artifact := range p.Items(ctx) {
		t.add(strconv.FormatInt(artifact.ID, 10), artifact.Name, artifactSize(artifact, h.config.Format))
	}
	if err := p.Err(); err != nil {
		return err
	}
	return t.render(h.out, h.config.Format)
}

// artifactSize is human readable in tab output and exact in CSV.
func artifactSize(artifact *model.Artifact, format string) string {
	if format == model.FormatCSV || artifact.SizeInBytes < 0 {
		return strconv.FormatInt(artifact.SizeInBytes, 10)
	}
	return humanize.Bytes(uint64(artifact.SizeInBytes))
}

func artifactsDeleteAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	repo, err := h.repository(ctx)
	if err != nil {
		return err
	}

	id := cmd.Int64("artifact-id")
	if err := h.actions.DeleteArtifact(ctx, repo, id); err != nil {
		return err
	}
	return writeLine(h.out, fmt.Sprintf("Artifact %d is deleted", id))
}
