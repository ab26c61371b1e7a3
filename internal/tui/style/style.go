// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// UI styles using lipgloss.
// These are package-level for convenience; lipgloss styles are value types
// and safe for concurrent use.
//
// Variable names omit the "Style" suffix since they're accessed via the
// style package (style.Title reads better than style.TitleStyle).
var (
	// Title is used for the panel header.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Subtitle is used for secondary text.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Lit is the active frequency readout while the radio is powered.
	Lit = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42"))

	// Error is used for error messages and the guard warning.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Warning is used for the open-squelch badge.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Info is used for the closed-squelch badge.
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	// Control frames one knob, switch or button. Every control renders at
	// the same outer size whatever its state, so hit regions never move.
	Control = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Align(lipgloss.Center)

	// Focused highlights the control keyboard input goes to.
	Focused = Control.
		BorderForeground(lipgloss.Color("205"))

	// Held marks the control that owns the pointer.
	Held = Control.
		BorderForeground(lipgloss.Color("42"))

	// Label is used for control captions.
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Muted is used for de-emphasized text.
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	// Progress is used for the output level meter.
	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
)
