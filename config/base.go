package config

import "slices"

// Environments a configuration may declare.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var environments = []string{EnvDevelopment, EnvStaging, EnvProduction}

// IsDevelopment reports whether env is the development environment.
func IsDevelopment(env string) bool { return env == EnvDevelopment }

func validEnvironment(env string) bool {
	return slices.Contains(environments, env)
}
