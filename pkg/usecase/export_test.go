package usecase

var ParseGitHubURL = parseGitHubURL

type ConfigService = configService

func (c *configService) FindConfigInDirectory(dir string) string {
	return c.findConfigInDirectory(dir)
}

// NewConfigServiceIn returns a config service rooted at fixed directories.
func NewConfigServiceIn(home, work string) *ConfigService {
	return &configService{
		homeDir: func() (string, error) { return home, nil },
		workDir: func() (string, error) { return work, nil },
	}
}
