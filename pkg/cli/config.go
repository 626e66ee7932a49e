package cli

import (
	"os"
	"time"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/actions/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const (
	flagRepository  = "repository"
	flagOrg         = "org"
	flagWorkflow    = "workflow"
	flagSince       = "since"
	flagFormat      = "format"
	flagConcurrency = "concurrency"
	flagAPIURL      = "api-url"
	flagConfig      = "config"
)

// Config is the resolved setting of one command invocation.
type Config struct {
	Repository  string
	Org         string
	Workflow    string
	Since       string
	Format      string
	Concurrency int
	APIURL      string
}

func NewConfig() *Config {
	defaults := model.Config{}.WithDefaults()
	return &Config{
		Format:      defaults.Format,
		Concurrency: defaults.Concurrency,
	}
}

// Merge fills the settings left empty on the command line from file and
// then applies defaults.
func (c *Config) Merge(file *model.Config) {
	if file != nil {
		if c.Repository == "" {
			c.Repository = file.Repository
		}
		if c.Org == "" {
			c.Org = file.Org
		}
		if c.Format == "" {
			c.Format = file.Format
		}
		if c.Concurrency == 0 {
			c.Concurrency = file.Concurrency
		}
		if c.APIURL == "" {
			c.APIURL = file.APIURL
		}
	}

	merged := c.asFile().WithDefaults()
	c.Format = merged.Format
	c.Concurrency = merged.Concurrency
}

func (c *Config) Validate() error {
	file := c.asFile()
	return file.Validate()
}

// asFile is c in the shape of the config file.
func (c *Config) asFile() model.Config {
	return model.Config{
		Repository:  c.Repository,
		Org:         c.Org,
		Format:      c.Format,
		Concurrency: c.Concurrency,
		APIURL:      c.APIURL,
	}
}

// SinceTime is the cutoff for run listings.
func (c *Config) SinceTime(now time.Time) time.Time {
	return model.ParseSince(c.Since, now)
}

func (c *Config) RequireOrg() (string, error) {
	if c.Org == "" {
		return "", domain.ErrConfiguration.Wrap(goerr.New("organization is required, use --org or ACTIONS_ORG"))
	}
	return c.Org, nil
}

func (c *Config) RequireWorkflow() (string, error) {
	if c.Workflow == "" {
		return "", domain.ErrConfiguration.Wrap(goerr.New("workflow is required, use --workflow or ACTIONS_WORKFLOW"))
	}
	return c.Workflow, nil
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose logging",
		},
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "Path to config file (default: ./.actions.yml or ~/.config/actions/config.yml)",
		},
		&cli.StringFlag{
			Name:    flagAPIURL,
			Usage:   "GitHub API endpoint",
			Sources: cli.EnvVars("GITHUB_API_URL"),
		},
		&cli.IntFlag{
			Name:    flagConcurrency,
			Usage:   "Maximum number of workflows processed at once",
			Sources: cli.EnvVars("ACTIONS_CONCURRENCY"),
		},
		&cli.StringFlag{
			Name:    flagFormat,
			Aliases: []string{"f"},
			Usage:   "Output format, tab or csv",
			Sources: cli.EnvVars("ACTIONS_FORMAT"),
		},
	}
}

func repositoryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagRepository,
		Aliases: []string{"r"},
		Usage:   "GitHub repository in the form owner/repo (default: origin of the current git checkout)",
		Sources: cli.EnvVars("ACTIONS_REPOSITORY"),
	}
}

func orgFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagOrg,
		Aliases: []string{"o"},
		Usage:   "GitHub organization",
		Sources: cli.EnvVars("ACTIONS_ORG"),
	}
}

func workflowFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagWorkflow,
		Aliases: []string{"w"},
		Usage:   "Only workflows whose name contains this text (case-insensitive)",
		Sources: cli.EnvVars("ACTIONS_WORKFLOW"),
	}
}

func sinceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagSince,
		Aliases: []string{"s"},
		Usage:   "Only runs created on or after this yyyy-mm-dd date (default: first day of the month)",
		Sources: cli.EnvVars("ACTIONS_SINCE"),
	}
}

// loadConfig reads the flags of cmd and the config file they point at.
func loadConfig(cmd *cli.Command) (*Config, error) {
	config := &Config{
		Repository:  cmd.String(flagRepository),
		Org:         cmd.String(flagOrg),
		Workflow:    cmd.String(flagWorkflow),
		Since:       cmd.String(flagSince),
		Format:      cmd.String(flagFormat),
		Concurrency: cmd.Int(flagConcurrency),
		APIURL:      cmd.String(flagAPIURL),
	}

	file, err := loadConfigFile(cmd.String(flagConfig))
	if err != nil {
		return nil, err
	}
	config.Merge(file)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadConfigFile(path string) (*model.Config, error) {
	service := usecase.NewConfigService()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, domain.ErrConfiguration.Wrap(goerr.Wrap(err, "config file not found", goerr.V("path", path)))
		}
		return service.Load(path)
	}
	return service.LoadDefault()
}
