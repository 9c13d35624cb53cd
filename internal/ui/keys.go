package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the watch UI's bindings. It implements help.KeyMap.
type keyMap struct {
	Quit, Help, CycleTheme, Tab, Escape key.Binding

	ViewDashboard, ViewLogs key.Binding

	Up, Down, Top, Bottom                      key.Binding
	PageUp, PageDown, HalfPageUp, HalfPageDown key.Binding

	ToggleFollow, Search, NextMatch, PrevMatch key.Binding

	Confirm key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:       bind("q", "Quit", "ctrl+c", "q"),
		Help:       bind("?", "Toggle help", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Tab:        bind("tab", "Switch view", "tab"),
		Escape:     bind("esc", "Back to dashboard", "esc"),

		ViewDashboard: bind("d", "Dashboard", "d"),
		ViewLogs:      bind("l", "Logs", "l"),

		Up:           bind("k/up", "Scroll up", "k", "up"),
		Down:         bind("j/down", "Scroll down", "j", "down"),
		Top:          bind("g", "Go to top", "g", "home"),
		Bottom:       bind("G", "Go to bottom", "G", "end"),
		PageUp:       bind("pgup", "Page up", "pgup"),
		PageDown:     bind("pgdown", "Page down", "pgdown"),
		HalfPageUp:   bind("ctrl+u", "Half page up", "ctrl+u"),
		HalfPageDown: bind("ctrl+d", "Half page down", "ctrl+d"),

		ToggleFollow: bind("space", "Toggle follow", " "),
		Search:       bind("/", "Search logs", "/"),
		NextMatch:    bind("n", "Next match", "n"),
		PrevMatch:    bind("N", "Previous match", "N"),

		Confirm: bind("enter", "Confirm", "enter"),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.ViewDashboard, k.ViewLogs, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDashboard, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.PageUp, k.PageDown, k.HalfPageUp, k.HalfPageDown},
		{k.ToggleFollow, k.Search, k.NextMatch, k.PrevMatch},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
