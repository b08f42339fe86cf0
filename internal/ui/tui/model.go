package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropkit/internal/provisioning"
)

// maxLogLines bounds the activity section.
const maxLogLines = 6

// StepStatus is a pipeline step as displayed.
type StepStatus struct {
	Name     string
	Done     bool
	Active   bool
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Model is the Bubble Tea model for the apply progress view.
type Model struct {
	// Droplet info
	DropletName string
	Region      string
	Mode        string

	Steps []StepStatus
	Log   []string

	Outputs   *provisioning.Outputs
	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewApplyModel creates a model listing steps in execution order.
func NewApplyModel(dropletName, region, mode string, steps []string) Model {
	m := Model{
		DropletName: dropletName,
		Region:      region,
		Mode:        mode,
		StartTime:   time.Now(),
	}
	for _, s := range steps {
		m.Steps = append(m.Steps, StepStatus{Name: s})
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StepMsg:
		// A failed step is shown here; the run's error arrives as ErrMsg.
		m.updateStep(msg)

	case LogMsg:
		m.Log = append(m.Log, msg.Line)
		if len(m.Log) > maxLogLines {
			m.Log = m.Log[len(m.Log)-maxLogLines:]
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		m.Outputs = msg.Outputs
		for i := range m.Steps {
			m.Steps[i].Active = false
			m.Steps[i].Done = true
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateStep(msg StepMsg) {
	idx := -1
	for i, step := range m.Steps {
		if step.Name == msg.Step {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Steps run one at a time in listed order
	for i := 0; i < idx; i++ {
		m.Steps[i].Done = true
		m.Steps[i].Active = false
	}

	step := &m.Steps[idx]
	switch {
	case msg.Err != nil:
		step.Err = msg.Err
		step.Active = false
		step.Duration = elapsedSince(step.Started)
	case msg.Done:
		step.Done = true
		step.Active = false
		step.Duration = elapsedSince(step.Started)
	default:
		step.Active = true
		step.Started = time.Now()
	}
}

func elapsedSince(t time.Time) time.Duration {
	if t.IsZero() {
		return 0
	}
	return time.Since(t)
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
