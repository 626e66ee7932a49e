package cli

import (
	"github.com/urfave/cli/v3"
)

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    "actions",
		Usage:   "GitHub Actions command line client",
		Version: "0.1.0",
		Description: `actions queries the GitHub REST API for workflows, runs, artifacts and secrets.

Authenticate with a GITHUB_TOKEN environment variable (a .env file is read too).
Commands that take --repository default to the origin remote of the current
git checkout.`,
		Flags: globalFlags(),
		Commands: []*cli.Command{
			newReposCommand(),
			newWorkflowsCommand(),
			newRunsCommand(),
			newArtifactsCommand(),
			newSecretsCommand(),
			NewConfigCommand(),
		},
	}
}
