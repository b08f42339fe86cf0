package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Plan returns the command that shows what apply would do.
func Plan(global *handlers.GlobalOptions) *cobra.Command {
	var (
		configPath string
		out        handlers.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the steps and cloud-config without creating anything",
		Long: `Validate the configuration, read the local public key and print the
step order, droplet request and rendered cloud-config.

No DigitalOcean API calls are made and no token is needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), *global, configPath, out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dropkit.yaml)")
	addOutputFlags(cmd, &out)

	return cmd
}
