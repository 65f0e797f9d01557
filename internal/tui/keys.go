package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Run      key.Binding
	RunOne   key.Binding
	Collapse key.Binding
	ShowAll  key.Binding
	Yank     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "focus up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "focus down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		HalfUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		HalfDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		Run:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run all")),
		RunOne:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "run focused")),
		Collapse: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "collapse")),
		ShowAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "show all")),
		Yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy output")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the status bar hint row.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Collapse, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Run, k.RunOne, k.Collapse, k.ShowAll},
		{k.Yank, k.Help, k.Quit},
	}
}
