// Package ui provides the Bubble Tea terminal dashboard for portside.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/portside/portside/internal/action"
	"github.com/portside/portside/internal/prefs"
	"github.com/portside/portside/internal/state"
)

// renderTick is how often the render loop re-checks the store for a new
// version. Cheap: an unchanged version is dropped before any layout work.
const renderTick = 250 * time.Millisecond

// mode is the input mode of the UI.
type mode int

const (
	modeNormal mode = iota
	modeFilter
	modePrompt
	modeConfirm
	modeHelp
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Dispatcher *action.Dispatcher
	ThemeName  string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	store      *state.Store
	dispatcher *action.Dispatcher
	prefsPath  string

	keys   keyMap
	theme  Theme
	styles Styles

	width  int
	height int
	ready  bool

	// Render gate: repaint only when the store version moved past this.
	snapshot state.AppState
	lastSeen uint64
	painted  bool

	mode  mode
	input textinput.Model

	// Pending prompt or confirmation.
	pendingAction  action.Action
	pendingTargets []string
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	theme := GetTheme(themeName)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.CharLimit = 256

	return Model{
		ctx:        ctx,
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		prefsPath:  prefsPath,
		keys:       defaultKeyMap(),
		theme:      theme,
		styles:     theme.Styles(),
		input:      input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		snap := state.AppState(msg)
		if m.painted && !state.ShouldRender(m.lastSeen, snap) {
			return m, nil
		}
		m.snapshot = snap
		m.lastSeen = snap.Version
		m.painted = true
		return m, nil

	case actionDoneMsg:
		// Converge right away instead of waiting for the next tick.
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.mode == modeHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeHelp:
		m.mode = modeNormal
		return m, nil
	case modeFilter:
		return m.handleFilterKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, k.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Tab: m.snapshot.Tab.String()})
		}
		return m, nil

	case key.Matches(msg, k.NextTab):
		m.store.SetTab(nextTab(m.snapshot.Tab, 1))
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.PrevTab):
		m.store.SetTab(nextTab(m.snapshot.Tab, -1))
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Filter):
		m.mode = modeFilter
		m.input = freshInput("filter", m.snapshot.Filter)
		m.store.SetFiltering(true)
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Escape):
		if m.snapshot.Filter != "" {
			m.store.SetFilter("")
		}
		if m.snapshot.BulkMode {
			m.store.ToggleBulkMode()
			m.store.ClearSelection()
		}
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.CycleSort):
		m.store.CycleSort()
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Up):
		m.store.MoveCursor(-1)
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Down):
		m.store.MoveCursor(1)
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Top):
		m.store.MoveCursor(-m.snapshot.ActiveLen())
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Bottom):
		m.store.MoveCursor(m.snapshot.ActiveLen())
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.BulkMode):
		m.store.ToggleBulkMode()
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, k.Toggle):
		if m.snapshot.BulkMode {
			m.store.ToggleSelected()
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case key.Matches(msg, k.SelectAll):
		if m.snapshot.BulkMode {
			m.store.SelectAll()
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case key.Matches(msg, k.Prune):
		return m.confirm(action.PruneSystem, nil), nil
	}

	return m.handleTabKey(msg)
}

// handleTabKey processes actions scoped to the active tab.
func (m Model) handleTabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	targets := m.targets()

	switch m.snapshot.Tab {
	case state.TabContainers:
		switch {
		case key.Matches(msg, k.Start):
			return m, m.dispatchCmd(action.StartContainer, targets, action.Params{})
		case key.Matches(msg, k.Stop):
			return m, m.dispatchCmd(action.StopContainer, targets, action.Params{})
		case key.Matches(msg, k.Restart):
			return m, m.dispatchCmd(action.RestartContainer, targets, action.Params{})
		case key.Matches(msg, k.Pause):
			return m, m.dispatchCmd(action.PauseContainer, targets, action.Params{})
		case key.Matches(msg, k.Unpause):
			return m, m.dispatchCmd(action.UnpauseContainer, targets, action.Params{})
		case key.Matches(msg, k.Remove):
			return m.confirm(action.RemoveContainer, targets), nil
		case key.Matches(msg, k.Rename):
			return m.prompt(action.RenameContainer, targets), nil
		case key.Matches(msg, k.Commit):
			return m.prompt(action.CommitContainer, targets), nil
		case key.Matches(msg, k.CopyIn):
			return m.prompt(action.CopyToContainer, targets), nil
		}

	case state.TabImages:
		switch {
		case key.Matches(msg, k.Run):
			return m.prompt(action.RunImage, targets), nil
		case key.Matches(msg, k.Remove):
			return m.confirm(action.RemoveImage, targets), nil
		case key.Matches(msg, k.Pull):
			return m.prompt(action.PullImage, nil), nil
		case key.Matches(msg, k.Build):
			return m.prompt(action.BuildImage, nil), nil
		case key.Matches(msg, k.Save):
			return m.prompt(action.SaveImage, targets), nil
		case key.Matches(msg, k.Load):
			return m.prompt(action.LoadImage, nil), nil
		}

	case state.TabVolumes:
		switch {
		case key.Matches(msg, k.Create):
			return m.prompt(action.CreateVolume, nil), nil
		case key.Matches(msg, k.Remove):
			return m.confirm(action.RemoveVolume, targets), nil
		}

	case state.TabNetworks:
		if key.Matches(msg, k.Remove) {
			return m.confirm(action.RemoveNetwork, targets), nil
		}

	case state.TabCompose:
		switch {
		case key.Matches(msg, k.ComposeUp):
			return m, m.dispatchCmd(action.ComposeUp, targets, action.Params{})
		case key.Matches(msg, k.ComposeDown):
			return m.confirm(action.ComposeDown, targets), nil
		case key.Matches(msg, k.Remove):
			return m.confirm(action.ComposeRemove, targets), nil
		case key.Matches(msg, k.Pause):
			return m, m.dispatchCmd(action.ComposePause, targets, action.Params{})
		}
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeNormal
		if msg.String() == "esc" {
			m.store.SetFilter("")
		}
		m.store.SetFiltering(false)
		return m, fetchSnapshotCmd(m.store)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetFilter(m.input.Value())
	return m, tea.Batch(cmd, fetchSnapshotCmd(m.store))
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		return m, nil
	case "enter":
		params := parsePromptInput(m.pendingAction, m.input.Value())
		act, targets := m.pendingAction, m.pendingTargets
		m.mode = modeNormal
		return m, m.dispatchCmd(act, targets, params)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		act, targets := m.pendingAction, m.pendingTargets
		m.mode = modeNormal
		return m, m.dispatchCmd(act, targets, action.Params{})
	default:
		m.mode = modeNormal
		return m, nil
	}
}

// prompt switches into text-input mode for an action needing parameters.
func (m Model) prompt(act action.Action, targets []string) Model {
	m.mode = modePrompt
	m.pendingAction = act
	m.pendingTargets = targets
	m.input = freshInput(promptLabel(act), "")
	return m
}

// confirm switches into confirmation mode for a destructive action.
func (m Model) confirm(act action.Action, targets []string) Model {
	m.mode = modeConfirm
	m.pendingAction = act
	m.pendingTargets = targets
	return m
}

// targets resolves the action target set: the bulk selection when bulk mode
// is armed and non-empty, otherwise the item under the cursor.
func (m Model) targets() []string {
	return resolveTargets(m.snapshot)
}

func resolveTargets(snap state.AppState) []string {
	if snap.BulkMode {
		if ids := snap.SelectedIDs(); len(ids) > 0 {
			return ids
		}
	}
	if id := snap.CursorID(); id != "" {
		return []string{id}
	}
	return nil
}

// nextTab steps through the tab ring in either direction.
func nextTab(current state.Tab, delta int) state.Tab {
	n := len(state.Tabs)
	idx := (int(current) + delta + n) % n
	return state.Tabs[idx]
}

func freshInput(placeholder, value string) textinput.Model {
	input := textinput.New()
	input.CharLimit = 256
	input.Placeholder = placeholder
	input.SetValue(value)
	input.Focus()
	return input
}

// Messages

type tickMsg time.Time

type snapshotMsg state.AppState

type actionDoneMsg struct{}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(renderTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) dispatchCmd(act action.Action, targets []string, p action.Params) tea.Cmd {
	if m.dispatcher == nil {
		return nil
	}
	return func() tea.Msg {
		m.dispatcher.Dispatch(m.ctx, act, targets, p)
		return actionDoneMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until quit.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
