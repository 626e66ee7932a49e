package model

import (
	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/goerr/v2"
)

const (
	FormatTab = "tab"
	FormatCSV = "csv"

	DefaultConcurrency = 20
)

// Config represents the application configuration file. Every field is a
// default that command-line flags and environment variables override.
type Config struct {
	Repository  string `yaml:"repository,omitempty"`
	Org         string `yaml:"org,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	APIURL      string `yaml:"api_url,omitempty"`
}

// Validate checks values that cannot be corrected by falling back to a default.
func (c *Config) Validate() error {
	if c.Format != "" && c.Format != FormatTab && c.Format != FormatCSV {
		return domain.ErrConfiguration.Wrap(goerr.New("unsupported format, try 'tab' or 'csv'",
			goerr.V("format", c.Format)))
	}
	if c.Concurrency < 0 {
		return domain.ErrConfiguration.Wrap(goerr.New("concurrency must not be negative",
			goerr.V("concurrency", c.Concurrency)))
	}
	return nil
}

// WithDefaults returns a copy with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Format == "" {
		c.Format = FormatTab
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}
