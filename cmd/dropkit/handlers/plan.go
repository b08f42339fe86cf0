package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/imamik/dropkit/internal/provisioning"
)

// Plan prints what apply would do. It reads the local public key but makes
// no provider calls and needs no credentials.
func Plan(_ context.Context, _ GlobalOptions, configPath string, out OutputOptions) error {
	if err := out.validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	source, err := newKeySource()
	if err != nil {
		return err
	}

	plan, err := provisioning.Plan(cfg, source)
	if err != nil {
		return err
	}

	return writeResult(out, plan, func(w io.Writer) {
		printPlan(w, plan)
	})
}

func printPlan(w io.Writer, plan *provisioning.PlanResult) {
	fmt.Fprintf(w, "Droplet %s (%s, %s, %s)\n", plan.Name, plan.Image, plan.Size, plan.Region)
	fmt.Fprintf(w, "  Mode:        %s\n", plan.Mode)
	fmt.Fprintf(w, "  Tags:        %s\n", strings.Join(plan.Tags, ", "))
	fmt.Fprintf(w, "  Public key:  %s (%s)\n", plan.PublicKeyPath, plan.Fingerprint)
	if plan.BootstrapScript != "" {
		fmt.Fprintf(w, "  Script:      %s\n", plan.BootstrapScript)
	}
	if plan.ArchivePrefix != "" {
		fmt.Fprintf(w, "  Archive:     %s\n", plan.ArchivePrefix)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Steps")
	for i, step := range plan.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}

	if plan.CloudConfig != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Cloud-config")
		fmt.Fprint(w, plan.CloudConfig)
	}
}
