package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Toggle    key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Create    key.Binding
	Bulk      key.Binding
	Filters   key.Binding
	Retry     key.Binding
	Quit      key.Binding

	Submit key.Binding
	Cancel key.Binding
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Toggle:    key.NewBinding(key.WithKeys("enter", "x"), key.WithHelp("x", "done")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Create:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Bulk:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bulk")),
		Filters:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Cycle:  key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "change")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.SelectAll, k.Toggle, k.Edit, k.Delete, k.Create, k.Bulk, k.Filters, k.Quit}
}
