package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/actions/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// handler carries what every API command needs.
type handler struct {
	config  *Config
	actions *usecase.ActionsService
	out     io.Writer
	now     time.Time
}

type action func(ctx context.Context, cmd *cli.Command, h *handler) error

func newLogger(cmd *cli.Command) *slog.Logger {
	logLevel := slog.LevelWarn
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	} else if cmd.Bool("verbose") {
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(errOutput(cmd), &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func errOutput(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// withHandler resolves configuration and credentials before running fn. A
// missing token fails here, before any request is sent. The command logger
// travels in the context passed to fn.
func withHandler(fn action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger := newLogger(cmd)
		ctx = ctxlog.With(ctx, logger)

		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		token, err := usecase.LookupToken(os.LookupEnv)
		if err != nil {
			return err
		}

		client, err := usecase.NewGitHubClient(ctx, token, config.APIURL)
		if err != nil {
			return err
		}

		logger.Debug("command configured",
			slog.String("command", cmd.FullName()),
			slog.String("format", config.Format),
			slog.Int("concurrency", config.Concurrency),
		)

		return fn(ctx, cmd, &handler{
			config:  config,
			actions: usecase.NewActionsService(client),
			out:     output(cmd),
			now:     time.Now(),
		})
	}
}

// repository resolves the target repository from flags, environment and
// config file, falling back to the origin remote of the working directory.
func (h *handler) repository(ctx context.Context) (model.Repository, error) {
	if h.config.Repository != "" {
		return model.ParseRepository(h.config.Repository)
	}

	dir, err := os.Getwd()
	if err != nil {
		return model.Repository{}, domain.ErrConfiguration.Wrap(err)
	}

	repo, err := h.actions.GetRepositoryInfo(ctx, dir)
	if err != nil {
		return model.Repository{}, domain.ErrConfiguration.Wrap(goerr.Wrap(err,
			"repository is required, use --repository or ACTIONS_REPOSITORY, or run in a GitHub checkout"))
	}
	ctxlog.From(ctx).Info("repository detected from git remote", slog.String("repo", repo.FullName()))
	return *repo, nil
}

func (h *handler) since() time.Time {
	return h.config.SinceTime(h.now)
}
