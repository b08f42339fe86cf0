package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropkit/internal/provisioning"
)

var testSteps = []string{
	provisioning.StepReadLocalKey,
	provisioning.StepReconcileKey,
	provisioning.StepRenderCloudConfig,
	provisioning.StepCreateDroplet,
	provisioning.StepWaitForAddress,
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCalculateProgress(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)
	if p := calculateProgress(m); p != 0 {
		t.Errorf("expected 0, got %v", p)
	}

	m.Steps[0].Done = true
	m.Steps[1].Done = true
	if p := calculateProgress(m); p != 0.4 {
		t.Errorf("expected 0.4, got %v", p)
	}

	m.Done = true
	if p := calculateProgress(m); p != 1.0 {
		t.Errorf("expected 1.0, got %v", p)
	}
}

func TestModelUpdateStep(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)

	m.updateStep(StepMsg{Step: provisioning.StepReadLocalKey})
	if !m.Steps[0].Active {
		t.Error("expected read-local-key to be active")
	}

	m.updateStep(StepMsg{Step: provisioning.StepReadLocalKey, Done: true})
	if !m.Steps[0].Done || m.Steps[0].Active {
		t.Error("expected read-local-key to be done and inactive")
	}

	// Starting a later step marks everything before it done.
	m.updateStep(StepMsg{Step: provisioning.StepCreateDroplet})
	for i := 0; i < 3; i++ {
		if !m.Steps[i].Done {
			t.Errorf("expected step %d to be done", i)
		}
	}
	if !m.Steps[3].Active {
		t.Error("expected create-droplet to be active")
	}

	boom := errors.New("quota exceeded")
	m.updateStep(StepMsg{Step: provisioning.StepCreateDroplet, Err: boom})
	if m.Steps[3].Err != boom || m.Steps[3].Active {
		t.Error("expected create-droplet to carry the error")
	}
}

func TestModelUpdateStep_UnknownStep(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)

	m.updateStep(StepMsg{Step: "nope", Done: true})

	for _, s := range m.Steps {
		if s.Done || s.Active {
			t.Errorf("unexpected change to %s", s.Name)
		}
	}
}

func TestModelUpdate_DoneQuits(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)
	out := &provisioning.Outputs{IPv4Address: "203.0.113.10"}

	next, cmd := m.Update(DoneMsg{Outputs: out})

	fm := next.(Model)
	if !fm.Done || fm.Outputs != out {
		t.Error("expected model to be done with outputs")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelUpdate_ErrQuits(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)

	next, cmd := m.Update(ErrMsg{Err: errors.New("create-droplet step failed: boom")})

	if next.(Model).Err == nil {
		t.Error("expected error on model")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModelUpdate_FailedStepWaitsForRunError(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)

	next, cmd := m.Update(StepMsg{Step: provisioning.StepReconcileKey, Err: errors.New("boom")})

	if next.(Model).Err != nil {
		t.Error("step failure alone should not set the run error")
	}
	if cmd != nil {
		t.Error("expected no command")
	}
}

func TestModelUpdate_LogIsBounded(t *testing.T) {
	var model tea.Model = NewApplyModel("web", "fra1", "cloud-init", testSteps)
	for i := 0; i < maxLogLines+3; i++ {
		model, _ = model.Update(LogMsg{Line: strings.Repeat("x", i+1)})
	}

	log := model.(Model).Log
	if len(log) != maxLogLines {
		t.Fatalf("expected %d lines, got %d", maxLogLines, len(log))
	}
	if log[len(log)-1] != strings.Repeat("x", maxLogLines+3) {
		t.Error("expected newest line last")
	}
}

func TestRenderView(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)
	m.Steps[0].Done = true
	m.Steps[1].Active = true
	m.Steps[1].Started = time.Now()

	output := renderView(m)

	for _, want := range []string{"dropkit: web", "(fra1)", "[cloud-init]", "Steps", "reconcile-key", "wait-for-address"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestRenderView_Outputs(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)
	m.Done = true
	m.Outputs = &provisioning.Outputs{IPv4Address: "203.0.113.10", PrivateKeyPath: "/home/dev/.ssh/id"}

	output := renderView(m)

	if !strings.Contains(output, "203.0.113.10") {
		t.Error("expected address in output")
	}
	if !strings.Contains(output, "ssh -i /home/dev/.ssh/id") {
		t.Error("expected ssh hint in output")
	}
	if !strings.Contains(output, "Ready") {
		t.Error("expected ready status")
	}
}

func TestRenderView_Error(t *testing.T) {
	m := NewApplyModel("web", "fra1", "cloud-init", testSteps)
	m.Steps[3].Err = errors.New("size unavailable")
	m.Err = errors.New("create-droplet step failed: size unavailable")

	output := renderView(m)

	if !strings.Contains(output, "Error:") {
		t.Error("expected error status")
	}
	if !strings.Contains(output, "size unavailable") {
		t.Error("expected step error in output")
	}
}

func TestObserver_TranslatesEvents(t *testing.T) {
	var got []tea.Msg
	inner := &countingObserver{}
	o := NewObserver(func(msg tea.Msg) { got = append(got, msg) }, inner)

	boom := errors.New("boom")
	provisioning.LogStepStart(o, provisioning.StepReconcileKey)
	provisioning.LogStepComplete(o, provisioning.StepReconcileKey, time.Second)
	provisioning.LogStepFailed(o, provisioning.StepCreateDroplet, boom)
	provisioning.LogResourceCreated(o, provisioning.StepCreateDroplet, "droplet", "web", "42")
	o.Printf("hello %s", "world")
	o.Progress(provisioning.StepReconcileKey, 1, 5)

	want := []tea.Msg{
		StepMsg{Step: provisioning.StepReconcileKey},
		StepMsg{Step: provisioning.StepReconcileKey, Done: true},
		StepMsg{Step: provisioning.StepCreateDroplet, Err: boom},
		LogMsg{Line: "web: droplet created"},
		LogMsg{Line: "hello world"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %#v, want %#v", i, got[i], want[i])
		}
	}
	if inner.events != 4 || inner.printf != 1 || inner.progress != 1 {
		t.Errorf("inner observer saw %+v", inner)
	}
}

func TestObserver_WithFieldsKeepsSender(t *testing.T) {
	var got []tea.Msg
	o := NewObserver(func(msg tea.Msg) { got = append(got, msg) }, nil)

	o.WithFields(map[string]string{"run": "abc"}).Printf("tagged")

	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
}

type countingObserver struct {
	events, printf, progress int
}

func (c *countingObserver) Printf(string, ...any)                              { c.printf++ }
func (c *countingObserver) Event(provisioning.Event)                           { c.events++ }
func (c *countingObserver) Progress(string, int, int)                          { c.progress++ }
func (c *countingObserver) WithFields(map[string]string) provisioning.Observer { return c }

func headlessOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	}
}

func TestRunApply_QuitCancelsRun(t *testing.T) {
	var runErr error
	run := func(ctx context.Context, observer provisioning.Observer) (*provisioning.Outputs, error) {
		observer.(*Observer).send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		<-ctx.Done()
		runErr = ctx.Err()
		return nil, runErr
	}

	out, err := runApply(context.Background(), NewApplyModel("web", "fra1", "cloud-init", testSteps), nil, run, headlessOptions()...)

	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("runApply() error = %v, want %v", err, ErrInterrupted)
	}
	if out != nil {
		t.Errorf("runApply() outputs = %+v, want nil", out)
	}
	// runApply waits for run, so runErr is settled here.
	if !errors.Is(runErr, context.Canceled) {
		t.Errorf("run saw %v, want context.Canceled", runErr)
	}
}

func TestRunApply_ReturnsOutputs(t *testing.T) {
	want := &provisioning.Outputs{IPv4Address: "198.51.100.4", PrivateKeyPath: "/home/dev/.ssh/id_ed25519"}
	run := func(context.Context, provisioning.Observer) (*provisioning.Outputs, error) {
		return want, nil
	}

	out, err := runApply(context.Background(), NewApplyModel("web", "fra1", "cloud-init", testSteps), nil, run, headlessOptions()...)

	if err != nil {
		t.Fatalf("runApply() error = %v", err)
	}
	if out != want {
		t.Errorf("runApply() outputs = %+v, want %+v", out, want)
	}
}

func TestRunApply_ReturnsRunError(t *testing.T) {
	failed := errors.New("create-droplet step failed: quota exceeded")
	run := func(context.Context, provisioning.Observer) (*provisioning.Outputs, error) {
		return nil, failed
	}

	_, err := runApply(context.Background(), NewApplyModel("web", "fra1", "cloud-init", testSteps), nil, run, headlessOptions()...)

	if !errors.Is(err, failed) {
		t.Errorf("runApply() error = %v, want %v", err, failed)
	}
}
