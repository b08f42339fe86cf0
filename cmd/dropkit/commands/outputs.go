package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Outputs returns the command that prints an archived run's outputs.
func Outputs(global *handlers.GlobalOptions) *cobra.Command {
	var (
		configPath string
		out        handlers.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "outputs RUN_ID",
		Short: "Print the outputs an archived apply run recorded",
		Long: `Read runs/<name>/<RUN_ID>/outputs.json from the configured archive bucket
and print it. The run ID is shown in the apply logs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Outputs(cmd.Context(), *global, configPath, args[0], out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dropkit.yaml)")
	addOutputFlags(cmd, &out)

	return cmd
}
