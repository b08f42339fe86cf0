package config

import (
	"errors"
	"os"
)

// Environment variables holding secrets. They never appear in dropkit.yaml.
const (
	EnvToken           = "DIGITALOCEAN_TOKEN"
	EnvSpacesAccessKey = "SPACES_ACCESS_KEY_ID"
	EnvSpacesSecretKey = "SPACES_SECRET_ACCESS_KEY"
)

// Credentials carries the API secrets for a run.
type Credentials struct {
	Token           string
	SpacesAccessKey string
	SpacesSecretKey string
}

// LoadCredentials reads credentials from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		Token:           os.Getenv(EnvToken),
		SpacesAccessKey: os.Getenv(EnvSpacesAccessKey),
		SpacesSecretKey: os.Getenv(EnvSpacesSecretKey),
	}
}

// Check reports missing credentials required by cfg.
func (c Credentials) Check(cfg *Config) error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New(EnvToken+" environment variable is required"))
	}
	if cfg.Archive.Enabled() {
		if c.SpacesAccessKey == "" {
			errs = append(errs, errors.New(EnvSpacesAccessKey+" environment variable required when archive.bucket is set"))
		}
		if c.SpacesSecretKey == "" {
			errs = append(errs, errors.New(EnvSpacesSecretKey+" environment variable required when archive.bucket is set"))
		}
	}
	return errors.Join(errs...)
}
