package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/provisioning"
)

// ApplyOptions are the flags of the apply command.
type ApplyOptions struct {
	ConfigPath  string
	Plain       bool
	MetricsFile string
	Output      OutputOptions
}

// Apply creates the droplet described by the configuration.
//
// This function wires the run together:
//  1. Loads and validates the configuration and credentials
//  2. Creates the DigitalOcean client, key reader and key reconciler
//  3. Adds the SSH dialer (bootstrap mode) and Spaces client (archive)
//  4. Runs the step pipeline, with the progress view when stdout is a terminal
//  5. Writes run metrics, if requested, whether or not the run succeeded
//  6. Prints the outputs
func Apply(ctx context.Context, global GlobalOptions, opts ApplyOptions) error {
	if err := opts.Output.validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	creds := loadCredentials()
	if err := creds.Check(cfg); err != nil {
		return err
	}

	interactive := !opts.Plain && isInteractiveTTY()
	logger, closeLog, err := newLogger(global, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	source, err := newKeySource()
	if err != nil {
		return err
	}

	timeouts := config.LoadTimeouts()
	client, err := newCloudClient(creds.Token, timeouts)
	if err != nil {
		return err
	}
	observer := provisioning.NewLogrObserver(logger)

	pctx := provisioning.NewContext(ctx, cfg, client, source, newReconciler(cfg, client, source, logger), observer)
	pctx.Timeouts = timeouts
	pctx.Dial = newRemoteDialer(timeouts)

	if cfg.Archive.Enabled() {
		store, err := newObjectStore(ctx, cfg.Archive, creds)
		if err != nil {
			return fmt.Errorf("failed to create archive client: %w", err)
		}
		pctx.Archive = store
	}

	outputs, runErr := runPipeline(pctx, interactive)

	if opts.MetricsFile != "" {
		if err := pctx.Metrics.WriteToTextfile(opts.MetricsFile); err != nil {
			logger.Error(err, "failed to write metrics file", "path", opts.MetricsFile)
		}
	}
	if runErr != nil {
		return withTokenHint(runErr)
	}

	return writeResult(opts.Output, outputs, func(w io.Writer) {
		printOutputs(w, outputs)
	})
}

// runPipeline runs the provisioning pipeline, under the progress view when
// interactive.
func runPipeline(pctx *provisioning.Context, interactive bool) (*provisioning.Outputs, error) {
	if !interactive {
		return provisioning.Provision(pctx)
	}

	pipeline, err := provisioning.NewDropletPipeline(pctx.Config)
	if err != nil {
		return nil, err
	}

	inner := pctx.Observer
	return runApplyTUI(pctx.Context, pctx.Config.Name, pctx.Config.Region, string(pctx.Config.Mode), pipeline.Order(), inner,
		func(ctx context.Context, observer provisioning.Observer) (*provisioning.Outputs, error) {
			pctx.Context = ctx
			pctx.Observer = observer.WithFields(map[string]string{"run": pctx.RunID})
			return provisioning.Provision(pctx)
		})
}

// printOutputs prints the run outputs in text form.
func printOutputs(w io.Writer, out *provisioning.Outputs) {
	fmt.Fprintf(w, "ipv4:           %s\n", out.IPv4Address)
	fmt.Fprintf(w, "privateKeyPath: %s\n", out.PrivateKeyPath)
	if out.CloudConfig != "" {
		fmt.Fprintln(w, "cloudConfig:")
		fmt.Fprintln(w, out.CloudConfig)
	}
}
