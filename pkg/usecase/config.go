package usecase

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/actions/pkg/domain/interfaces"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const localConfigName = ".actions.yml"

type configService struct {
	homeDir func() (string, error)
	workDir func() (string, error)
}

func NewConfigService() interfaces.ConfigService {
	return &configService{
		homeDir: os.UserHomeDir,
		workDir: os.Getwd,
	}
}

func (c *configService) Load(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(goerr.Wrap(err, "failed to read config file", goerr.V("path", path)))
	}

	var config model.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, domain.ErrConfiguration.Wrap(goerr.Wrap(err, "failed to parse config file", goerr.V("path", path)))
	}
	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid config file", goerr.V("path", path))
	}
	return &config, nil
}

// LoadDefault loads .actions.yml from the working directory, then the user
// config file. Neither existing yields an empty config.
func (c *configService) LoadDefault() (*model.Config, error) {
	if dir, err := c.workDir(); err == nil {
		if path := c.findConfigInDirectory(dir); path != "" {
			return c.Load(path)
		}
	}

	path := c.GetDefaultPath()
	if path == "" {
		return &model.Config{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &model.Config{}, nil
	}
	return c.Load(path)
}

func (c *configService) GetDefaultPath() string {
	home, err := c.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "actions", "config.yml")
}

func (c *configService) findConfigInDirectory(dir string) string {
	path := filepath.Join(dir, localConfigName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func (c *configService) GenerateTemplate() string {
	return `# actions configuration
# Command-line flags and ACTIONS_* environment variables take precedence.

# Default repository (owner/name) for workflows, runs, artifacts and secrets
# repository: octocat/hello-world

# Default organization for the repos command
# org: octocat

# Output format: tab or csv
format: tab

# Maximum number of workflows processed concurrently by runs stats
concurrency: 20

# API endpoint for GitHub Enterprise Server
# api_url: https://github.example.com/api/v3/
`
}

func (c *configService) SaveTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return domain.ErrConfiguration.Wrap(goerr.New("config file already exists, use --force to overwrite", goerr.V("path", path)))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("path", path))
	}
	if err := os.WriteFile(path, []byte(c.GenerateTemplate()), 0644); err != nil {
		return goerr.Wrap(err, "failed to write config file", goerr.V("path", path))
	}
	return nil
}
