package cli

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"
)

func newReposCommand() *cli.Command {
	return &cli.Command{
		Name:   "repos",
		Usage:  "List repositories of an organization that use GitHub Actions",
		Flags:  []cli.Flag{orgFlag()},
		Action: withHandler(reposAction),
	}
}

func reposAction(ctx context.Context, cmd *cli.Command, h *handler) error {
	org, err := h.config.RequireOrg()
	if err != nil {
		return err
	}

	repos, err := h.actions.Repositories(ctx, org)
	if err != nil {
		return err
	}

	t := newTable("Repo", "Workflow Count").withStyle(boldFirst)
	for _, repo := range repos {
		t.add(repo.FullName, strconv.Itoa(len(repo.Workflows)))
	}
	return t.render(h.out, h.config.Format)
}
