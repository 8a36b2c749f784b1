package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings for the map view.
type KeyMap struct {
	PlayPause     key.Binding
	Step          key.Binding
	Stop          key.Binding
	FocusNext     key.Binding
	FocusPrev     key.Binding
	ClearFocus    key.Binding
	ToggleSidebar key.Binding
	ToggleHelp    key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Step: key.NewBinding(
			key.WithKeys("s", "."),
			key.WithHelp("s", "step"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next node"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab", "prev node"),
		),
		ClearFocus: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear focus"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "sidebar"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Step, k.FocusNext, k.ToggleHelp, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Step, k.Stop},
		{k.FocusNext, k.FocusPrev, k.ClearFocus},
		{k.ToggleSidebar, k.ToggleHelp, k.Quit},
	}
}
