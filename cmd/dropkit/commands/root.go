// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Root returns the root command for the dropkit CLI.
//
// Global flags control logging and where credentials are read from; they are
// shared by every subcommand through a single handlers.GlobalOptions value.
func Root() *cobra.Command {
	opts := &handlers.GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "dropkit",
		Short:         "Provision a key-only DigitalOcean droplet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return handlers.LoadEnv(opts.EnvFile)
		},
	}

	cmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Load credentials from this file if it exists")

	cmd.AddCommand(Init())
	cmd.AddCommand(Plan(opts))
	cmd.AddCommand(Keys(opts))
	cmd.AddCommand(Apply(opts))
	cmd.AddCommand(Outputs(opts))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// addOutputFlags binds the flags shared by commands that print a result.
func addOutputFlags(cmd *cobra.Command, out *handlers.OutputOptions) {
	cmd.Flags().StringVarP(&out.Format, "output", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVar(&out.File, "output-file", "", "Also write the result to this file")
}
