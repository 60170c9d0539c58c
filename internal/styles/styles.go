// Package styles provides shared lipgloss styles for command output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/cymirs/internal/storage"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary   = lipgloss.Color("4")   // Blue
	Secondary = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
	Success   = lipgloss.Color("2")   // Green
	Warning   = lipgloss.Color("3")   // Yellow
	Error     = lipgloss.Color("1")   // Red
)

// Text styles.
var (
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Padding(0, 1)

	Cell = lipgloss.NewStyle().
		Padding(0, 1)

	MutedText = lipgloss.NewStyle().
			Foreground(Secondary)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)
)

// Border is the border drawn around tables.
var Border = lipgloss.NormalBorder()

// Status renders a run status in its color.
func Status(status string) string {
	switch status {
	case storage.StatusSucceeded:
		return SuccessText.Render(status)
	case storage.StatusFailed:
		return ErrorText.Render(status)
	case storage.StatusRunning:
		return lipgloss.NewStyle().Foreground(Warning).Render(status)
	default:
		return status
	}
}
