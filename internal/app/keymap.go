package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines global and pane-specific bindings.
type KeyMap struct {
	Quit        key.Binding
	ToggleFocus key.Binding
	Up          key.Binding
	Down        key.Binding
	ExtendUp    key.Binding
	ExtendDown  key.Binding
	Toggle      key.Binding
	Open        key.Binding
	Back        key.Binding
	Refresh     key.Binding
	Top         key.Binding
	Bottom      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Help        key.Binding

	ViewMode        key.Binding
	DiffStyle       key.Binding
	CollapseStaged  key.Binding
	CollapseChanges key.Binding
	Filter          key.Binding
	NextRepo        key.Binding
	PrevRepo        key.Binding
	CloseRepo       key.Binding

	Stage      key.Binding
	StageAll   key.Binding
	UnstageAll key.Binding
	Discard    key.Binding
	DiscardAll key.Binding
	Commit     key.Binding
	Submit     key.Binding

	Comment     key.Binding
	SelectRange key.Binding
	Edit        key.Binding
	Delete      key.Binding
	CopyFile    key.Binding
	CopyRepo    key.Binding
	Dismiss     key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ToggleFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		ExtendUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "extend up")),
		ExtendDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "extend down")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle select")),
		Open:        key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "back")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		PageUp:      key.NewBinding(key.WithKeys("ctrl+b", "pgup"), key.WithHelp("ctrl-b", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("ctrl+f", "pgdown"), key.WithHelp("ctrl-f", "page down")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		ViewMode:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "changes/history")),
		DiffStyle:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "split/unified")),
		CollapseStaged:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "fold staged")),
		CollapseChanges: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "fold changes")),
		Filter:          key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter history")),
		NextRepo:        key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next repo")),
		PrevRepo:        key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous repo")),
		CloseRepo:       key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "close repo")),

		Stage:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stage/unstage")),
		StageAll:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "stage all")),
		UnstageAll: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "unstage all")),
		Discard:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		DiscardAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "discard all")),
		Commit:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "commit")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl-s", "submit")),

		Comment:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		SelectRange: key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "select lines")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit comment")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete comment")),
		CopyFile:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy file comments")),
		CopyRepo:    key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy all comments")),
		Dismiss:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}
