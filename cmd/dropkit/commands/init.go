package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dropkit/cmd/dropkit/handlers"
)

// Init returns the command for interactively creating a configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "dropkit.yaml")
//	--generate-key: Create ~/.ssh/<keyName> if it does not exist
func Init() *cobra.Command {
	var (
		outputPath  string
		generateKey bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration",
		Long: `Interactively create a dropkit configuration file.

The wizard asks for the droplet name, image, size and region, the SSH key
to use and how the droplet should be configured.

Use --generate-key to create an ed25519 key pair under ~/.ssh when the
chosen key does not exist yet. An existing key is never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, generateKey)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "dropkit.yaml", "Output file path")
	cmd.Flags().BoolVar(&generateKey, "generate-key", false, "Generate the SSH key pair if it is missing")

	return cmd
}
