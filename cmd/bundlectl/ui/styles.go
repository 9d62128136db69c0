// Package ui implements the interactive wizard: setup, recommendations and
// checkout pages rendered with bubbletea.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorPrimary = lipgloss.Color("#2196F3") // blue
	colorAccent  = lipgloss.Color("#FFC107") // yellow
	colorSuccess = lipgloss.Color("#8BC34A") // green
	colorError   = lipgloss.Color("#e53935") // red
	colorMuted   = lipgloss.Color("#808080")
)

// Styles holds the lipgloss styles shared by all wizard pages.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Badge    lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles builds the wizard style set.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Bold(true),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Badge:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(colorAccent).Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(colorMuted),
	}
}
