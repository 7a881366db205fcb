package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	Activate key.Binding
	Force    key.Binding
	Clear    key.Binding
	Position key.Binding
	Save     key.Binding
	Log      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Activate: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Force:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle, no animation")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear group")),
		Position: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "pick in group"),
		),
		Save: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Log:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "event log")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Position, k.Clear, k.Save, k.Log, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End},
		{k.Activate, k.Force, k.Position, k.Clear},
		{k.Save, k.Log, k.Help, k.Quit},
	}
}
