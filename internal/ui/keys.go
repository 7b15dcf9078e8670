package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings of the calendar. It satisfies help.KeyMap.
type keyMap struct {
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.PrevMonth, k.NextMonth, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view (columns).
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek},
		{k.PrevMonth, k.NextMonth, k.Today},
		{k.ScrollUp, k.ScrollDn, k.Help, k.Quit},
	}
}

var keys = keyMap{
	PrevDay: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous day"),
	),
	NextDay: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next day"),
	),
	PrevWeek: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous week"),
	),
	NextWeek: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next week"),
	),
	PrevMonth: key.NewBinding(
		key.WithKeys("p", "pgup"),
		key.WithHelp("p", "previous month"),
	),
	NextMonth: key.NewBinding(
		key.WithKeys("n", "pgdown"),
		key.WithHelp("n", "next month"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "scroll events up"),
	),
	ScrollDn: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "scroll events down"),
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
