// Package config loads the apiwrap configuration.
//
// It uses Viper to read a YAML or JSON file, loads a .env file with
// godotenv and applies environment overrides. Keys are matched in several
// nestings, so APIWRAP_API_AUTH_TOKEN sets api.auth.token.
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("github.yml"))
//
// Without an explicit file the loader looks for apiwrap.yml, config.yml
// and the user config directory (e.g. ~/.config/apiwrap/config.yml).
package config
