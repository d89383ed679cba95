package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	grab     key.Binding
	add      key.Binding
	edit     key.Binding
	remove   key.Binding
	open     key.Binding
	reload   key.Binding
	theme    key.Binding
	bigger   key.Binding
	smaller  key.Binding
	wake     key.Binding
	shutdown key.Binding
	next     key.Binding
	submit   key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		grab:     key.NewBinding(key.WithKeys(" ", "m"), key.WithHelp("space", "grab/drop")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		open:     key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		bigger:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger")),
		smaller:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller")),
		wake:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wake")),
		shutdown: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shutdown")),
		next:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.grab},
		{k.add, k.edit, k.remove},
		{k.reload, k.theme, k.quit},
	}
}

// linkKeys is the help shown on the links board.
func (k keyMap) linkKeys() []key.Binding {
	return []key.Binding{k.grab, k.add, k.edit, k.remove, k.open, k.theme, k.bigger, k.smaller, k.reload, k.quit}
}

// deviceKeys is the help shown on the device dashboard.
func (k keyMap) deviceKeys() []key.Binding {
	return []key.Binding{k.grab, k.add, k.edit, k.remove, k.wake, k.shutdown, k.theme, k.reload, k.quit}
}

// dragKeys is the help shown while a row is grabbed.
func (k keyMap) dragKeys() []key.Binding {
	return []key.Binding{k.up, k.down, k.grab, k.back}
}

// formKeys is the help shown in an edit form.
func (k keyMap) formKeys() []key.Binding {
	return []key.Binding{k.next, k.submit, k.back}
}
