package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the panel.
type KeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Down    key.Binding
	Up      key.Binding
	Squelch key.Binding
	Tone    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings for the panel.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next control"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous control"),
		),
		Down: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/h", "turn left"),
		),
		Up: key.NewBinding(
			key.WithKeys("right", "l", "+"),
			key.WithHelp("→/l", "turn right"),
		),
		Squelch: key.NewBinding(
			key.WithKeys("space", " "),
			key.WithHelp("space", "squelch"),
		),
		Tone: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "hold/release tone"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the short help bindings for the panel.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Down, k.Up, k.Squelch, k.Tone, k.Help, k.Quit}
}

// FullHelp returns the full help bindings for the panel.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Down, k.Up},
		{k.Squelch, k.Tone},
		{k.Help, k.Quit},
	}
}
