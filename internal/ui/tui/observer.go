package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropkit/internal/provisioning"
)

// Observer turns provisioning events into TUI messages and forwards every
// call to an inner observer, typically a logger writing to a file.
type Observer struct {
	send  func(tea.Msg)
	inner provisioning.Observer
}

var _ provisioning.Observer = (*Observer)(nil)

// NewObserver creates an observer that delivers messages through send.
func NewObserver(send func(tea.Msg), inner provisioning.Observer) *Observer {
	return &Observer{send: send, inner: inner}
}

// Printf implements provisioning.Observer.
func (o *Observer) Printf(format string, v ...any) {
	o.send(LogMsg{Line: fmt.Sprintf(format, v...)})
	if o.inner != nil {
		o.inner.Printf(format, v...)
	}
}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	switch event.Type {
	case provisioning.EventStepStarted:
		o.send(StepMsg{Step: event.Step})
	case provisioning.EventStepCompleted:
		o.send(StepMsg{Step: event.Step, Done: true})
	case provisioning.EventStepFailed:
		o.send(StepMsg{Step: event.Step, Err: event.Err})
	case provisioning.EventResourceCreated, provisioning.EventResourceExists:
		o.send(LogMsg{Line: fmt.Sprintf("%s: %s", event.Resource, event.Message)})
	}
	if o.inner != nil {
		o.inner.Event(event)
	}
}

// Progress implements provisioning.Observer. The step list already shows
// progress, so it is only forwarded.
func (o *Observer) Progress(step string, current, total int) {
	if o.inner != nil {
		o.inner.Progress(step, current, total)
	}
}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	var inner provisioning.Observer
	if o.inner != nil {
		inner = o.inner.WithFields(fields)
	}
	return &Observer{send: o.send, inner: inner}
}
