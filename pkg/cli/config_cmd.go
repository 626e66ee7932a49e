package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/actions/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// NewConfigCommand creates a new config command
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage actions configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Generate configuration template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"O"},
						Usage:   "Output path for config file",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Force overwrite existing file",
					},
				},
				Action: configInitAction,
			},
		},
	}
}

func configInitAction(ctx context.Context, cmd *cli.Command) error {
	service := usecase.NewConfigService()

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = service.GetDefaultPath()
	}
	if outputPath == "" {
		return goerr.New("cannot determine home directory, use --output")
	}

	if err := service.SaveTemplate(outputPath, cmd.Bool("force")); err != nil {
		return goerr.Wrap(err, "failed to create config template")
	}

	return writeLine(output(cmd), fmt.Sprintf("Config template written to %s", outputPath))
}
