package config

import (
	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/validation"
	"github.com/kbukum/apiwrap/wrapper"
)

// Config is the configuration of an API client built from a declarative
// definition.
//
//	name: github-cli
//	environment: production
//	logging:
//	  level: warn
//	http:
//	  timeout: 10s
//	api:
//	  name: github
//	  api_root: https://api.github.com
//	  resources:
//	    user:
//	      resource: users/{user}
type Config struct {
	Name          string               `yaml:"name" mapstructure:"name"`
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	HTTP          httpclient.Config    `yaml:"http" mapstructure:"http"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	API           wrapper.Definition   `yaml:"api" mapstructure:"api"`
}

// ApplyDefaults fills unset fields. The name falls back to the API name
// and development enables debug logging.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = c.API.Name
	}
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if IsDevelopment(c.Environment) {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.HTTP.ApplyDefaults()

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate checks every section and reports all failing fields at once.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("name", c.Name)
	v.Custom(validEnvironment(c.Environment), "environment", "must be one of: development staging production")
	v.Merge("logging", c.Logging.Validate())
	v.Merge("http", c.HTTP.Validate())
	v.Merge("observability", validation.Validate(&c.Observability))
	v.Merge("api", c.API.Validate())
	return v.Validate()
}
