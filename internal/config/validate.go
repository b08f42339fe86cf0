package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// DigitalOcean accepts hostname characters for droplet names.
	dropletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]{0,253}[a-zA-Z0-9])?$`)
	tagRegex         = regexp.MustCompile(`^[a-zA-Z0-9_:-]{1,255}$`)
	usernameRegex    = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
	bucketRegex      = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)
)

// Validate reports every problem with the configuration at once.
// It expects ApplyDefaults to have run.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Name == "":
		errs = append(errs, errors.New("name is required"))
	case !dropletNameRegex.MatchString(c.Name):
		errs = append(errs, fmt.Errorf("name %q must contain only letters, digits, dots and hyphens", c.Name))
	}

	if c.Image == "" {
		errs = append(errs, errors.New("image is required"))
	}

	switch {
	case c.KeyName == "":
		errs = append(errs, errors.New("keyName is required"))
	case strings.ContainsAny(c.KeyName, `/\`) || c.KeyName == "." || c.KeyName == "..":
		errs = append(errs, fmt.Errorf("keyName %q must be a file name inside ~/.ssh, not a path", c.KeyName))
	}

	for _, tag := range c.Tags {
		if !tagRegex.MatchString(tag) {
			errs = append(errs, fmt.Errorf("tag %q may only contain letters, digits, ':', '-' and '_'", tag))
		}
	}

	if c.Username != "" && !usernameRegex.MatchString(c.Username) {
		errs = append(errs, fmt.Errorf("username %q is not a valid Linux user name", c.Username))
	}

	if !c.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode must be one of: %v", ValidModes()))
	}
	if !c.KeyMatch.IsValid() {
		errs = append(errs, fmt.Errorf("keyMatch must be one of: %v", ValidKeyMatches()))
	}

	switch c.Mode {
	case ModeBootstrap:
		if c.Bootstrap.Script == "" {
			errs = append(errs, errors.New("bootstrap.script is required in bootstrap mode"))
		}
	case ModeCloudInit:
		if c.Bootstrap.Script != "" {
			errs = append(errs, errors.New("bootstrap.script is only used in bootstrap mode"))
		}
	}

	if c.Archive.Enabled() && !bucketRegex.MatchString(c.Archive.Bucket) {
		errs = append(errs, fmt.Errorf("archive.bucket %q is not a valid Spaces bucket name", c.Archive.Bucket))
	}

	return errors.Join(errs...)
}
