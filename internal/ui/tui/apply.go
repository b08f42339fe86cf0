package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropkit/internal/provisioning"
)

// ErrInterrupted is returned when the view is closed before the run ends.
var ErrInterrupted = errors.New("interrupted")

// RunFunc runs the pipeline under ctx, reporting through observer.
type RunFunc func(ctx context.Context, observer provisioning.Observer) (*provisioning.Outputs, error)

// RunApplyTUI shows step progress while run executes in the background.
// inner receives every event as well and may be nil. Closing the view
// cancels the run's context and waits for run to return.
func RunApplyTUI(ctx context.Context, dropletName, region, mode string, steps []string, inner provisioning.Observer, run RunFunc) (*provisioning.Outputs, error) {
	return runApply(ctx, NewApplyModel(dropletName, region, mode, steps), inner, run)
}

func runApply(ctx context.Context, m Model, inner provisioning.Observer, run RunFunc, opts ...tea.ProgramOption) (*provisioning.Outputs, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, opts...)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		out, err := run(ctx, NewObserver(p.Send, inner))
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{Outputs: out})
	}()

	stop := func() {
		cancel()
		<-finished
	}

	finalModel, err := p.Run()
	if err != nil {
		stop()
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	switch {
	case fm.Err != nil:
		return nil, fm.Err
	case fm.Done:
		return fm.Outputs, nil
	default:
		stop()
		return nil, ErrInterrupted
	}
}
