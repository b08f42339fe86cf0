package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Keys returns the command that only reconciles the SSH key.
func Keys(global *handlers.GlobalOptions) *cobra.Command {
	var (
		configPath string
		out        handlers.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Match or register the SSH key and print its fingerprint",
		Long: `Resolve ~/.ssh/<keyName>.pub against the keys on the account.

If a stored key matches, its fingerprint is printed. If the account has no
keys, the local key is registered under the droplet name. If the account
has keys but none match, the command fails without registering anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Keys(cmd.Context(), *global, configPath, out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dropkit.yaml)")
	addOutputFlags(cmd, &out)

	return cmd
}
