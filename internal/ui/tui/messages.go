// Package tui provides a Bubble Tea-based terminal UI for droplet provisioning.
package tui

import "github.com/imamik/dropkit/internal/provisioning"

// StepMsg reports that a pipeline step started, finished or failed.
type StepMsg struct {
	Step string
	Done bool
	Err  error
}

// LogMsg carries a line for the activity section.
type LogMsg struct {
	Line string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run completed.
type DoneMsg struct {
	Outputs *provisioning.Outputs
}
