package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Flip key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "previous"),
		),
		Flip: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "flip"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Flip, k.Next, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
