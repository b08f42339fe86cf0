package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/imamik/dropkit/internal/cloudinit"
	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/platform/digitalocean"
)

// BootstrapCommand makes the uploaded script executable and runs it with
// elevated privileges.
var BootstrapCommand = fmt.Sprintf("chmod +x %[1]s && sudo %[1]s", config.RemoteScriptPath)

const bootstrapScriptMode = 0o700

// Object names under a run's archive prefix.
const (
	archivedOutputsFile     = "outputs.json"
	archivedCloudConfigFile = "cloud-config.yaml"
)

// readLocalKey loads the public key and, when the run has to log in to the
// droplet, the private key as well.
func readLocalKey(ctx *Context) error {
	name := ctx.Config.KeyName
	local := &LocalKey{
		Name:           name,
		PrivateKeyPath: ctx.Keys.PrivateKeyPath(name),
	}

	if ctx.Config.Mode == config.ModeBootstrap {
		pair, err := ctx.Keys.Read(name)
		if err != nil {
			return err
		}
		local.PublicKey = pair.PublicKey
		local.PrivateKey = pair.PrivateKey
	} else {
		pub, err := ctx.Keys.ReadPublicKey(name)
		if err != nil {
			return err
		}
		local.PublicKey = pub
	}

	ctx.State.LocalKey = local
	ctx.Observer.Printf("Read key %s (%s)", ctx.Keys.PublicKeyPath(name), keys.Fingerprint(local.PublicKey))
	return nil
}

// reconcileKey finds or registers the account key for the local public key.
func reconcileKey(ctx *Context) error {
	handle, err := ctx.Reconciler.ReconcilePublicKey(ctx, ctx.Config.Name, ctx.State.LocalKey.PublicKey)
	ctx.Metrics.ObserveReconcile(keys.Outcome(handle, err))
	if err != nil {
		return err
	}

	ctx.State.KeyFingerprint = handle.Fingerprint
	ctx.State.KeyCreated = handle.Created
	if handle.Created {
		LogResourceCreated(ctx.Observer, StepReconcileKey, "ssh key", ctx.Config.Name, handle.Fingerprint)
	} else {
		LogResourceExists(ctx.Observer, StepReconcileKey, "ssh key", ctx.Config.KeyName, handle.Fingerprint)
	}
	return nil
}

// renderCloudConfig renders the first-boot document for the local key.
func renderCloudConfig(ctx *Context) error {
	rendered, err := cloudinit.Build(ctx.Config.Username, ctx.State.LocalKey.PublicKey).Render()
	if err != nil {
		return err
	}
	ctx.State.CloudConfig = rendered
	return nil
}

// createDroplet issues the single droplet create request.
func createDroplet(ctx *Context) error {
	cfg := ctx.Config
	opts := digitalocean.DropletCreateOpts{
		Name:     cfg.Name,
		Region:   cfg.Region,
		Size:     cfg.Size,
		Image:    cfg.Image,
		SSHKeys:  []string{ctx.State.KeyFingerprint},
		Tags:     cfg.DropletTags(),
		UserData: ctx.State.CloudConfig,
	}

	LogResourceCreating(ctx.Observer, StepCreateDroplet, "droplet", cfg.Name)
	droplet, err := ctx.Cloud.CreateDroplet(ctx, opts)
	if err != nil {
		return err
	}

	ctx.State.Machine = &Machine{ID: droplet.ID, Name: droplet.Name, IPv4: droplet.IPv4}
	LogResourceCreated(ctx.Observer, StepCreateDroplet, "droplet", cfg.Name, strconv.Itoa(droplet.ID))
	return nil
}

// waitForAddress blocks until the droplet is active with a public IPv4.
func waitForAddress(ctx *Context) error {
	ip, err := ctx.Cloud.WaitForIPv4(ctx, ctx.State.Machine.ID)
	if err != nil {
		return err
	}
	ctx.State.Machine.IPv4 = ip
	ctx.Observer.Printf("Droplet %s is reachable at %s", ctx.State.Machine.Name, ip)
	return nil
}

// uploadScript copies the bootstrap script to the droplet, replacing any
// previous copy.
func uploadScript(ctx *Context) error {
	runner, err := ctx.Dial(ctx.State.Machine.IPv4, []byte(ctx.State.LocalKey.PrivateKey))
	if err != nil {
		return err
	}
	ctx.State.Remote = runner
	return runner.Upload(ctx, ctx.Config.Bootstrap.Script, config.RemoteScriptPath, bootstrapScriptMode)
}

// runScript runs the uploaded script.
func runScript(ctx *Context) error {
	output, err := ctx.State.Remote.Execute(ctx, BootstrapCommand)
	ctx.State.ScriptOutput = output
	return err
}

// archiveOutputs stores the run outputs under runs/<name>/<run ID>/.
func archiveOutputs(ctx *Context) error {
	bucket := ctx.Config.Archive.Bucket
	if err := ctx.Archive.EnsureBucket(ctx, bucket); err != nil {
		return err
	}

	prefix := ArchivePrefix(ctx.Config.Name, ctx.RunID)
	outputs, err := json.MarshalIndent(ctx.State.Outputs(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}

	objects := []archiveObject{
		{path.Join(prefix, archivedOutputsFile), "application/json", outputs},
	}
	if ctx.State.CloudConfig != "" {
		objects = append(objects, archiveObject{path.Join(prefix, archivedCloudConfigFile), "text/cloud-config", []byte(ctx.State.CloudConfig)})
	}

	for _, obj := range objects {
		if err := ctx.Archive.PutObject(ctx, bucket, obj.key, obj.contentType, obj.data); err != nil {
			return err
		}
		ctx.State.ArchivedKeys = append(ctx.State.ArchivedKeys, obj.key)
	}
	return nil
}

type archiveObject struct {
	key, contentType string
	data             []byte
}

// ArchivePrefix is the object key prefix for one run's outputs.
func ArchivePrefix(name, runID string) string {
	return path.Join("runs", name, runID)
}

// FetchArchivedOutputs reads back the outputs a run archived under
// runs/<name>/<runID>/.
func FetchArchivedOutputs(ctx context.Context, store ArchiveReader, bucket, name, runID string) (*Outputs, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, "/\\") {
		return nil, fmt.Errorf("invalid run ID %q", runID)
	}

	key := path.Join(ArchivePrefix(name, runID), archivedOutputsFile)
	data, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	var out Outputs
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &out, nil
}
