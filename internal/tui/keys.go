package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kuvia/kuvia/internal/gallery"
)

// keyMap lists the bindings shown in the help bar. Gallery navigation keys
// are dispatched through gallery.Dispatcher.HandleKey; the bindings here
// only describe them.
type keyMap struct {
	Next     key.Binding
	Previous key.Binding
	Zoom     key.Binding
	Sidebar  key.Binding
	Open     key.Binding
	Up       key.Binding
	Down     key.Binding
	Back     key.Binding
	Forward  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("j", "right"),
			key.WithHelp("j/→", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("k", "left"),
			key.WithHelp("k/←", "previous"),
		),
		Zoom: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "list"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "zoom/open"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "list up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "list down"),
		),
		Back: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "forward"),
		),
		Help: key.NewBinding(
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
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Zoom, k.Sidebar, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Zoom},
		{k.Sidebar, k.Up, k.Down, k.Open},
		{k.Back, k.Forward},
		{k.Help, k.Quit},
	}
}

// galleryKey converts a bubbletea key press to the surface-neutral form
// HandleKey expects.
func galleryKey(msg tea.KeyMsg) gallery.Key {
	name := msg.String()
	k := gallery.Key{Alt: msg.Alt}
	name = strings.TrimPrefix(name, "alt+")

	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			k.Ctrl = true
			name = strings.TrimPrefix(name, "ctrl+")
			continue
		case strings.HasPrefix(name, "shift+"):
			k.Shift = true
			name = strings.TrimPrefix(name, "shift+")
			continue
		}
		break
	}

	if name == " " {
		name = gallery.KeySpace
	}
	k.Name = name
	return k
}
