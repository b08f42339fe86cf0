package provisioning

// Step is one node of the provisioning graph.
type Step interface {
	// Name identifies the step. Names are unique within a pipeline.
	Name() string

	// DependsOn lists the steps that must complete before this one runs.
	DependsOn() []string

	// Run does the step's work, reading from and writing to ctx.State.
	Run(ctx *Context) error
}

// Step names.
const (
	StepReadLocalKey      = "read-local-key"
	StepReconcileKey      = "reconcile-key"
	StepRenderCloudConfig = "render-cloud-config"
	StepCreateDroplet     = "create-droplet"
	StepWaitForAddress    = "wait-for-address"
	StepUploadScript      = "upload-script"
	StepRunScript         = "run-script"
	StepArchiveOutputs    = "archive-outputs"
)

type funcStep struct {
	name string
	deps []string
	run  func(ctx *Context) error
}

// NewStep builds a Step from a function.
func NewStep(name string, deps []string, run func(ctx *Context) error) Step {
	return &funcStep{name: name, deps: deps, run: run}
}

func (s *funcStep) Name() string           { return s.name }
func (s *funcStep) DependsOn() []string    { return s.deps }
func (s *funcStep) Run(ctx *Context) error { return s.run(ctx) }
