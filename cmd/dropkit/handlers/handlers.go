// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/platform/digitalocean"
	"github.com/imamik/dropkit/internal/platform/s3"
	"github.com/imamik/dropkit/internal/provisioning"
	"github.com/imamik/dropkit/internal/ui/tui"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	Verbosity int
	LogFormat string
	LogFile   string
	EnvFile   string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newCloudClient creates the DigitalOcean client.
	newCloudClient = func(token string, timeouts *config.Timeouts) (digitalocean.Client, error) {
		c, err := digitalocean.NewRealClient(token, digitalocean.WithTimeouts(timeouts))
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// newKeySource returns the ~/.ssh reader.
	newKeySource = keys.DefaultSource

	// newObjectStore creates the Spaces client used for archiving outputs.
	newObjectStore = func(ctx context.Context, archive config.ArchiveConfig, creds config.Credentials) (provisioning.ObjectStore, error) {
		return s3.NewClient(ctx, archive.Endpoint(), archive.Region, creds.SpacesAccessKey, creds.SpacesSecretKey)
	}

	// newArchiveReader creates the Spaces client used to read archived runs.
	newArchiveReader = func(ctx context.Context, archive config.ArchiveConfig, creds config.Credentials) (provisioning.ArchiveReader, error) {
		return s3.NewClient(ctx, archive.Endpoint(), archive.Region, creds.SpacesAccessKey, creds.SpacesSecretKey)
	}

	// newRemoteDialer creates the SSH dialer used in bootstrap mode.
	newRemoteDialer = provisioning.SSHDialer

	// runApplyTUI shows the progress view.
	runApplyTUI = tui.RunApplyTUI

	// isInteractiveTTY reports whether stdout is a terminal.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	// findConfigFile locates dropkit.yaml.
	findConfigFile = config.FindConfigFile

	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.Load

	// loadCredentials reads credentials from the environment.
	loadCredentials = config.LoadCredentials

	// stdout and stderr receive command output and logs.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// LoadEnv loads variables from path into the environment without replacing
// variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig loads and validates the configuration.
// If configPath is empty, it looks for dropkit.yaml in the current directory
// and its parents.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'dropkit init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger. The returned close function releases the
// log file, if one was opened.
func newLogger(opts GlobalOptions, quiet bool) (logr.Logger, func(), error) {
	format := provisioning.LogFormat(opts.LogFormat)
	if format != provisioning.LogFormatText && format != provisioning.LogFormatJSON {
		return logr.Discard(), func() {}, fmt.Errorf("unknown log format %q (use text or json)", opts.LogFormat)
	}

	if opts.LogFile != "" {
		// #nosec G304
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return logr.Discard(), func() {}, fmt.Errorf("failed to open log file: %w", err)
		}
		return provisioning.NewLogger(f, format, opts.Verbosity), func() { _ = f.Close() }, nil
	}
	if quiet {
		return logr.Discard(), func() {}, nil
	}
	return provisioning.NewLogger(stderr, format, opts.Verbosity), func() {}, nil
}

// withTokenHint points at the token variable when the API rejected it.
func withTokenHint(err error) error {
	if err != nil && digitalocean.IsUnauthorized(err) {
		return fmt.Errorf("%w\nCheck that %s holds a valid DigitalOcean API token", err, config.EnvToken)
	}
	return err
}

// newReconciler wires the key reconciler with the configured match strategy.
func newReconciler(cfg *config.Config, store keys.Store, source *keys.Source, log logr.Logger) *keys.Reconciler {
	return keys.NewReconciler(store, source,
		keys.WithMatchFunc(keys.MatcherFor(cfg.KeyMatch)),
		keys.WithLogger(log.WithName("keys")),
	)
}
