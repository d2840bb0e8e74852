package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Escape     key.Binding
	Filter     key.Binding
	CycleSort  key.Binding
	Prune      key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Bulk selection
	BulkMode  key.Binding
	Toggle    key.Binding
	SelectAll key.Binding

	// Container actions
	Start   key.Binding
	Stop    key.Binding
	Restart key.Binding
	Pause   key.Binding
	Unpause key.Binding
	Remove  key.Binding
	Rename  key.Binding
	Commit  key.Binding
	CopyIn  key.Binding

	// Image actions
	Run   key.Binding
	Pull  key.Binding
	Build key.Binding
	Save  key.Binding
	Load  key.Binding

	// Volume actions
	Create key.Binding

	// Compose actions
	ComposeUp   key.Binding
	ComposeDown key.Binding

	Confirm key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous tab"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel / clear"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Cycle sort"),
		),
		Prune: key.NewBinding(
			key.WithKeys("Z"),
			key.WithHelp("Z", "Prune system"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		BulkMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Bulk mode"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle selection"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Select all"),
		),

		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Stop"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Restart"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pause"),
		),
		Unpause: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Unpause"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Remove"),
		),
		Rename: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Rename"),
		),
		Commit: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Commit"),
		),
		CopyIn: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy file in"),
		),

		Run: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Run image"),
		),
		Pull: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Pull image"),
		),
		Build: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Build image"),
		),
		Save: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Save image"),
		),
		Load: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Load image"),
		),

		Create: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Create volume"),
		),

		ComposeUp: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "Compose up"),
		),
		ComposeDown: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Compose down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the footer hint.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Filter, k.BulkMode, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Top, k.Bottom},
		{k.Filter, k.CycleSort, k.BulkMode, k.Toggle, k.SelectAll},
		{k.Start, k.Stop, k.Restart, k.Pause, k.Unpause, k.Remove},
		{k.Rename, k.Commit, k.CopyIn, k.Run, k.Pull, k.Build},
		{k.Save, k.Load, k.Create, k.ComposeUp, k.ComposeDown, k.Prune},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
