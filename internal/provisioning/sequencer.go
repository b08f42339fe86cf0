package provisioning

import (
	"errors"
	"fmt"

	"github.com/imamik/dropkit/internal/cloudinit"
	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
)

// DropletSteps returns the step graph for the configured mode.
//
// cloud-init:
//
//	read-local-key -> reconcile-key -------\
//	read-local-key -> render-cloud-config --> create-droplet -> wait-for-address
//
// bootstrap:
//
//	read-local-key -> reconcile-key -> create-droplet -> wait-for-address
//	  -> upload-script -> run-script
//
// archive-outputs follows the last step of either graph when an archive
// bucket is configured.
func DropletSteps(cfg *config.Config) []Step {
	var steps []Step
	last := StepWaitForAddress

	switch cfg.Mode {
	case config.ModeBootstrap:
		steps = []Step{
			NewStep(StepReadLocalKey, nil, readLocalKey),
			NewStep(StepReconcileKey, []string{StepReadLocalKey}, reconcileKey),
			NewStep(StepCreateDroplet, []string{StepReconcileKey}, createDroplet),
			NewStep(StepWaitForAddress, []string{StepCreateDroplet}, waitForAddress),
			NewStep(StepUploadScript, []string{StepWaitForAddress}, uploadScript),
			NewStep(StepRunScript, []string{StepUploadScript}, runScript),
		}
		last = StepRunScript
	default:
		steps = []Step{
			NewStep(StepReadLocalKey, nil, readLocalKey),
			NewStep(StepReconcileKey, []string{StepReadLocalKey}, reconcileKey),
			NewStep(StepRenderCloudConfig, []string{StepReadLocalKey}, renderCloudConfig),
			NewStep(StepCreateDroplet, []string{StepReconcileKey, StepRenderCloudConfig}, createDroplet),
			NewStep(StepWaitForAddress, []string{StepCreateDroplet}, waitForAddress),
		}
	}

	if cfg.Archive.Enabled() {
		steps = append(steps, NewStep(StepArchiveOutputs, []string{last}, archiveOutputs))
	}
	return steps
}

// NewDropletPipeline builds and validates the pipeline for cfg.
func NewDropletPipeline(cfg *config.Config) (*Pipeline, error) {
	return NewPipeline(DropletSteps(cfg)...)
}

// Provision runs the droplet pipeline. On failure the partial results stay
// in ctx.State; nothing that was created is removed.
func Provision(ctx *Context) (*Outputs, error) {
	if err := checkCollaborators(ctx); err != nil {
		LogValidationError(ctx.Observer, err)
		return nil, err
	}

	pipeline, err := NewDropletPipeline(ctx.Config)
	if err != nil {
		LogValidationError(ctx.Observer, err)
		return nil, err
	}

	if err := pipeline.Run(ctx); err != nil {
		return nil, err
	}
	return ctx.State.Outputs(), nil
}

func checkCollaborators(ctx *Context) error {
	var errs []error
	if ctx.Cloud == nil {
		errs = append(errs, errors.New("no cloud client"))
	}
	if ctx.Keys == nil {
		errs = append(errs, errors.New("no key reader"))
	}
	if ctx.Reconciler == nil {
		errs = append(errs, errors.New("no key reconciler"))
	}
	if ctx.Config.Mode == config.ModeBootstrap && ctx.Dial == nil {
		errs = append(errs, errors.New("bootstrap mode needs a remote dialer"))
	}
	if ctx.Config.Archive.Enabled() && ctx.Archive == nil {
		errs = append(errs, errors.New("archive bucket configured without an object store"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("incomplete provisioning context: %w", errors.Join(errs...))
	}
	return nil
}

// PlanResult describes what a run would do without calling the provider.
type PlanResult struct {
	Name            string   `json:"name"`
	Mode            string   `json:"mode"`
	Region          string   `json:"region"`
	Size            string   `json:"size"`
	Image           string   `json:"image"`
	Tags            []string `json:"tags"`
	Steps           []string `json:"steps"`
	PublicKeyPath   string   `json:"publicKeyPath"`
	Fingerprint     string   `json:"fingerprint"`
	CloudConfig     string   `json:"cloudConfig,omitempty"`
	BootstrapScript string   `json:"bootstrapScript,omitempty"`
	ArchivePrefix   string   `json:"archivePrefix,omitempty"`
	PrivateKeyPath  string   `json:"privateKeyPath"`
}

// Plan reads the local public key and reports the step order, droplet
// request and rendered cloud-config for cfg. It makes no provider calls.
func Plan(cfg *config.Config, keyReader KeyReader) (*PlanResult, error) {
	pipeline, err := NewDropletPipeline(cfg)
	if err != nil {
		return nil, err
	}

	pub, err := keyReader.ReadPublicKey(cfg.KeyName)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{
		Name:           cfg.Name,
		Mode:           string(cfg.Mode),
		Region:         cfg.Region,
		Size:           cfg.Size,
		Image:          cfg.Image,
		Tags:           cfg.DropletTags(),
		Steps:          pipeline.Order(),
		PublicKeyPath:  keyReader.PublicKeyPath(cfg.KeyName),
		Fingerprint:    keys.Fingerprint(pub),
		PrivateKeyPath: keyReader.PrivateKeyPath(cfg.KeyName),
	}

	switch cfg.Mode {
	case config.ModeBootstrap:
		result.BootstrapScript = cfg.Bootstrap.Script
	default:
		rendered, err := cloudinit.Build(cfg.Username, pub).Render()
		if err != nil {
			return nil, err
		}
		result.CloudConfig = rendered
	}

	if cfg.Archive.Enabled() {
		result.ArchivePrefix = ArchivePrefix(cfg.Name, "<run-id>")
	}
	return result, nil
}
