// ABOUTME: Shared lipgloss styles, program banner and settings summary
// ABOUTME: Used by the interactive TUI and the plain streaming-log mode
package ui

import (
	"fmt"
	"strings"

	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/charmbracelet/lipgloss"
)

var (
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	bannerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("9"))

	bannerAuthorStyle = bannerTitleStyle.
				Italic(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	faintStyle = lipgloss.NewStyle().Faint(true)
)

// Banner renders the program title and author between two rules
func Banner(title, author string) string {
	width := len(title)
	if len(author) > width {
		width = len(author)
	}
	rule := separatorStyle.Render(strings.Repeat("=", width+10))

	var b strings.Builder
	b.WriteString(rule)
	b.WriteString("\n   ")
	b.WriteString(bannerTitleStyle.Render(title))
	b.WriteString("   \n   ")
	b.WriteString(bannerAuthorStyle.Render(author))
	b.WriteString("   \n")
	b.WriteString(rule)
	b.WriteString("\n")
	return b.String()
}

// Settings renders the playback parameters summary shown before playback
func Settings(p binaural.Params) string {
	var b strings.Builder
	b.WriteString("--- Binaural Beat Settings ---\n")
	fmt.Fprintf(&b, "Carrier Frequency: %.2f Hz\n", p.CarrierHz)
	fmt.Fprintf(&b, "Beat Frequency: %.2f Hz\n", p.BeatHz)
	fmt.Fprintf(&b, "Left Ear Frequency: %.2f Hz\n", p.LeftHz())
	fmt.Fprintf(&b, "Right Ear Frequency: %.2f Hz\n", p.RightHz())
	fmt.Fprintf(&b, "Duration: %d minutes\n", p.DurationMinutes)
	b.WriteString("----------------------------\n")
	return b.String()
}

// renderBar draws a width-character progress bar for value out of max
func renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
