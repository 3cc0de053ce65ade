package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Select     key.Binding
	Up         key.Binding
	Down       key.Binding
	Play       key.Binding
	Toggle     key.Binding
	Stop       key.Binding
	Loop       key.Binding
	Assign     key.Binding
	Clear      key.Binding
	Back       key.Binding
	Forward    key.Binding
	Restart    key.Binding
	Screen     key.Binding
	Audio      key.Binding
	Font       key.Binding
	Controller key.Binding
	Export     key.Binding
	Import     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Select:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "play slot")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Play:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Loop:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "loop")),
		Assign:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "assign file")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear slot")),
		Back:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back 5s")),
		Forward:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward 5s")),
		Restart:    key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "restart clip")),
		Screen:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next screen")),
		Audio:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "next audio device")),
		Font:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "deck font size")),
		Controller: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show/hide deck")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Import:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Toggle, k.Stop, k.Loop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Up, k.Down, k.Play},
		{k.Toggle, k.Stop, k.Back, k.Forward, k.Restart},
		{k.Loop, k.Assign, k.Clear},
		{k.Screen, k.Audio, k.Font, k.Controller},
		{k.Export, k.Import},
		{k.Help, k.Quit},
	}
}

func matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
