package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/linuxmatters/arianator/internal/pipeline"
)

var (
	redColor    = lipgloss.Color("#A40000")
	grayColor   = lipgloss.Color("#888888")
	greenColor  = lipgloss.Color("#00AA00")
	orangeColor = lipgloss.Color("#FFA500")
)

const (
	boxWidth      = 60
	barWidth      = 40
	maxTextLength = 48
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	for i, s := range m.Steps {
		b.WriteString(renderStepEntry(s, m.spinnerIndex))
		if i == m.Current {
			b.WriteString("\n")
			b.WriteString(renderStepDetails(s))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(redColor).
		Render("Arianator 📢")

	subtitle := lipgloss.NewStyle().
		Foreground(grayColor).
		Italic(true).
		Render(fmt.Sprintf("%q in %s", shorten(m.Text, maxTextLength), m.Voice))

	return title + "\n" + subtitle
}

func renderStepEntry(s StepProgress, spinnerIndex int) string {
	label := s.Step.Label()

	switch s.State {
	case pipeline.Done:
		icon := lipgloss.NewStyle().Foreground(greenColor).Render("✓")
		return fmt.Sprintf(" %s %s %s", icon, label, muted(formatElapsed(s.Elapsed)))

	case pipeline.Running:
		icon := lipgloss.NewStyle().Foreground(orangeColor).Render("⚙")
		spin := lipgloss.NewStyle().Foreground(redColor).Render(spinnerFrames[spinnerIndex%len(spinnerFrames)])
		return fmt.Sprintf(" %s %s %s", icon, label, spin)

	case pipeline.Skipped:
		icon := lipgloss.NewStyle().Foreground(grayColor).Render("–")
		return fmt.Sprintf(" %s %s", icon, muted(label+" (skipped)"))

	case pipeline.Failed:
		icon := lipgloss.NewStyle().Foreground(redColor).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, label, s.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(grayColor).Render("○")
		return fmt.Sprintf(" %s %s", icon, muted(label))
	}
}

// renderStepDetails renders the box under the running step
func renderStepDetails(s StepProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(redColor).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	if s.Detail != "" {
		content.WriteString(s.Detail)
		content.WriteString("\n")
	}
	content.WriteString(renderProgressBar(s.Progress, barWidth))

	elapsed := time.Duration(0)
	if !s.Started.IsZero() {
		elapsed = time.Since(s.Started)
	}
	content.WriteString(fmt.Sprintf("\n⏱  Elapsed: %s", formatElapsed(elapsed)))

	if !math.IsNaN(s.Level) && !math.IsInf(s.Level, 0) {
		content.WriteString(fmt.Sprintf("\n📊 Level: %.1f dB | Peak: %.1f dB", s.Level, s.Peak))
	}

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = math.Max(0, math.Min(1, progress))
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

// renderOverallProgress renders the footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(grayColor).
		Padding(0, 1).
		Width(boxWidth)

	var content string
	if m.Current >= 0 {
		content = fmt.Sprintf("Step %d of %d (%d complete) | %s",
			m.Current+1, len(m.Steps), m.CompletedSteps(), formatElapsed(time.Since(m.StartTime)))
	} else {
		content = fmt.Sprintf("Overall progress: %d/%d complete", m.CompletedSteps(), len(m.Steps))
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final view
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	if m.Err != nil {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(redColor).
			Render("✗ Run failed")
		b.WriteString(header)
		b.WriteString("\n\n")
		for _, s := range m.Steps {
			if s.State == pipeline.Done || s.State == pipeline.Failed {
				b.WriteString(renderStepEntry(s, 0))
				b.WriteString("\n")
			}
		}
		b.WriteString(fmt.Sprintf("\n%v\n", m.Err))
		return b.String()
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(greenColor).
		Render("✨ Arianation complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	if s := m.Summary; s != nil {
		icon := lipgloss.NewStyle().Foreground(greenColor).Render("✓")
		b.WriteString(fmt.Sprintf(" %s %s %s\n", icon, filepath.Base(s.AudioOutput), muted(humanize.Bytes(uint64(max(s.AudioSize, 0))))))
		b.WriteString(fmt.Sprintf(" %s %s %s\n", icon, filepath.Base(s.VideoOutput), muted(humanize.Bytes(uint64(max(s.VideoSize, 0))))))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("─", boxWidth))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%dx%d @ %.3g fps, finished in %s\n",
			s.Background.Width, s.Background.Height, s.Background.FPS, formatElapsed(s.End.Sub(s.Start))))
	}

	return b.String()
}

func muted(s string) string {
	return lipgloss.NewStyle().Foreground(grayColor).Render(s)
}

// formatElapsed formats a duration as "1m05s" or "4.2s"
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%02ds", m, s)
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
