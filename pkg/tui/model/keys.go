package model

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Instances key.Binding
	Type      key.Binding
	From      key.Binding
	To        key.Binding
	Delay     key.Binding
	Keyword   key.Binding
	Live      key.Binding
	Submit    key.Binding
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Instances: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "instance"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "type"),
		),
		From: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "from date"),
		),
		To: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "to date"),
		),
		Delay: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delay"),
		),
		Keyword: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "keyword"),
		),
		Live: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "live"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "fetch"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Instances, k.Type, k.Keyword, k.Live, k.Submit, k.Help, k.Quit}
}

// FullHelp groups every binding by pane.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Instances, k.From, k.To, k.Delay, k.Live, k.Submit},
		{k.Type, k.Keyword},
		{k.Up, k.Down, k.Copy},
		{k.Help, k.Back, k.Quit},
	}
}
