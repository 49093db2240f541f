package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit          key.Binding
	ForceQuit     key.Binding
	Up            key.Binding
	Down          key.Binding
	Top           key.Binding
	Mute          key.Binding // m: toggle global mute
	VolumeUp      key.Binding
	VolumeDown    key.Binding
	Like          key.Binding
	Follow        key.Binding
	Comments      key.Binding // c: comment drawer
	Compose       key.Binding // n: new post
	Refresh       key.Binding
	SwitchMode    key.Binding // tab: newest / following / tag
	Tag           key.Binding
	Author        key.Binding // a: author card
	NotInterested key.Binding
	Block         key.Binding
	ToggleHints   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev clip"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next clip"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "volume down"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		Comments: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comments"),
		),
		Compose: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new post"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		SwitchMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "feed"),
		),
		Tag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tag"),
		),
		Author: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "author"),
		),
		NotInterested: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "not interested"),
		),
		Block: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "block author"),
		),
		ToggleHints: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "keys"),
		),
	}
}

// ShortHelp is the status bar hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Mute, k.Like, k.Comments, k.Compose, k.ToggleHints, k.Quit}
}

// FullHelp is the hints overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Top, k.Refresh},
		{k.Mute, k.VolumeUp, k.VolumeDown},
		{k.Like, k.Follow, k.Author, k.Comments},
		{k.SwitchMode, k.Tag, k.Compose},
		{k.NotInterested, k.Block, k.ToggleHints, k.Quit},
	}
}
