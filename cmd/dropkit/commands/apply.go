package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Apply returns the command that creates the droplet.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect dropkit.yaml)
//	--plain: Print log lines instead of the progress view
//	--metrics-file: Write run metrics in Prometheus text format
//
// Environment variables:
//
//	DIGITALOCEAN_TOKEN: DigitalOcean API token (required)
//	SPACES_ACCESS_KEY_ID, SPACES_SECRET_ACCESS_KEY: required when archive.bucket is set
func Apply(global *handlers.GlobalOptions) *cobra.Command {
	opts := handlers.ApplyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create the droplet",
		Long: `Create the droplet described by the configuration file.

The local public key ~/.ssh/<keyName>.pub is matched against the keys on
the account and registered if the account has none. The droplet is then
created with that key and configured according to the mode:

  cloud-init  an admin user with sudo, root login disabled, only SSH allowed
  bootstrap   bootstrap.script is uploaded and run as root over SSH

A failed step stops the run. Nothing that was already created is removed.

Examples:
  # Create the droplet from dropkit.yaml in the current directory
  dropkit apply

  # Machine-readable outputs
  dropkit apply --plain -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), *global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: dropkit.yaml)")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Disable the progress view")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write run metrics to this file")
	addOutputFlags(cmd, &opts.Output)

	return cmd
}
