package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderSteps(&b, m)

	if len(m.Log) > 0 {
		renderLog(&b, m)
	}
	if m.Outputs != nil {
		renderOutputs(&b, m)
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("dropkit: %s", m.DropletName)
	if m.Region != "" {
		title += fmt.Sprintf(" (%s)", m.Region)
	}
	if m.Mode != "" {
		title += fmt.Sprintf(" [%s]", m.Mode)
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done:
		status += readyStyle.Render("Ready")
	case activeStep(m) != "":
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render(activeStep(m))
	default:
		status += dimStyle.Render("Starting...")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderSteps(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Steps"))
	b.WriteString("\n")

	for _, step := range m.Steps {
		var icon string
		var style styleFunc
		dur := ""
		switch {
		case step.Err != nil:
			icon = crossMark
			style = sf(failedStyle)
		case step.Done:
			icon = checkMark
			style = sf(readyStyle)
			if step.Duration > 0 {
				dur = formatDuration(step.Duration)
			}
		case step.Active:
			icon = currentSpinner(m.SpinnerFrame)
			style = sf(activeStyle)
			dur = formatDuration(elapsedSince(step.Started))
		default:
			icon = pending
			style = sf(dimStyle)
		}
		fmt.Fprintf(b, "    %s %-22s %s\n", style(icon), style(step.Name), dimStyle.Render(dur))
		if step.Err != nil {
			fmt.Fprintf(b, "         %s\n", failedStyle.Render(step.Err.Error()))
		}
	}
}

func renderLog(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Activity"))
	b.WriteString("\n")
	for _, line := range m.Log {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render(line))
	}
}

func renderOutputs(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Outputs"))
	b.WriteString("\n")
	fmt.Fprintf(b, "    %-16s %s\n", "ipv4", readyStyle.Render(m.Outputs.IPv4Address))
	fmt.Fprintf(b, "    %-16s %s\n", "privateKeyPath", m.Outputs.PrivateKeyPath)
	if m.Outputs.IPv4Address != "" && m.Outputs.PrivateKeyPath != "" {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render(fmt.Sprintf("ssh -i %s <user>@%s", m.Outputs.PrivateKeyPath, m.Outputs.IPv4Address)))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s  |  q: quit", elapsed)))
	b.WriteString("\n")
}

// Helper functions

func activeStep(m Model) string {
	for _, s := range m.Steps {
		if s.Active {
			return s.Name
		}
	}
	return ""
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}
	if len(m.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range m.Steps {
		if s.Done {
			done++
		}
	}
	return float64(done) / float64(len(m.Steps))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
