package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start  key.Binding
	Next   key.Binding
	Prev   key.Binding
	Select key.Binding
	Replay key.Binding
	Speed  key.Binding
	Hints  key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Next:   key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick")),
		Replay: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "replay")),
		Speed:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "speed")),
		Hints:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "hints")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "restart")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Replay, k.Speed, k.Hints, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Select},
		{k.Replay, k.Speed, k.Hints},
		{k.Reset, k.Quit},
	}
}
