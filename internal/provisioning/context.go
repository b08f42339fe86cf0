package provisioning

import (
	"context"

	"github.com/google/uuid"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/platform/digitalocean"
)

// State holds the shared results of provisioning steps.
// It is progressively populated as each step completes and is read by the
// steps that depend on it.
type State struct {
	// Populated by read-local-key. PrivateKey is only loaded in bootstrap mode.
	LocalKey *LocalKey

	// Populated by reconcile-key.
	KeyFingerprint string
	KeyCreated     bool

	// Populated by render-cloud-config (cloud-init mode).
	CloudConfig string

	// Populated by create-droplet and wait-for-address.
	Machine *Machine

	// Populated by upload-script and run-script (bootstrap mode).
	Remote       RemoteRunner
	ScriptOutput string

	// Object keys written by archive-outputs.
	ArchivedKeys []string
}

// LocalKey is the key material read for the run.
type LocalKey struct {
	Name           string
	PublicKey      string
	PrivateKey     string
	PrivateKeyPath string
}

// Machine is the droplet created by the run.
type Machine struct {
	ID   int
	Name string
	IPv4 string
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// Outputs returns what the run produced so far.
func (s *State) Outputs() *Outputs {
	out := &Outputs{CloudConfig: s.CloudConfig}
	if s.Machine != nil {
		out.IPv4Address = s.Machine.IPv4
	}
	if s.LocalKey != nil {
		out.PrivateKeyPath = s.LocalKey.PrivateKeyPath
	}
	return out
}

// Outputs are reported to the caller when a run completes.
type Outputs struct {
	IPv4Address    string `json:"ipv4"`
	CloudConfig    string `json:"cloudConfig,omitempty"`
	PrivateKeyPath string `json:"privateKeyPath"`
}

// Context wraps all dependencies and state needed for a provisioning step.
type Context struct {
	context.Context
	Config     *config.Config
	State      *State
	Cloud      digitalocean.Client
	Keys       KeyReader
	Reconciler KeyReconciler
	Dial       RemoteDialer
	Archive    ObjectStore
	Observer   Observer
	Metrics    *Metrics
	Timeouts   *config.Timeouts
	RunID      string
}

// NewContext creates a provisioning context with a fresh run ID, a per-run
// metrics registry and an SSH dialer built from the environment timeouts.
// The observer is tagged with the run ID.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	cloud digitalocean.Client,
	keyReader KeyReader,
	reconciler KeyReconciler,
	observer Observer,
) *Context {
	runID := uuid.NewString()
	timeouts := config.LoadTimeouts()
	return &Context{
		Context:    ctx,
		Config:     cfg,
		State:      NewState(),
		Cloud:      cloud,
		Keys:       keyReader,
		Reconciler: reconciler,
		Dial:       SSHDialer(timeouts),
		Observer:   observer.WithFields(map[string]string{"run": runID}),
		Metrics:    NewMetrics(),
		Timeouts:   timeouts,
		RunID:      runID,
	}
}
