package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keybot/keybot/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewLogs
)

// Options configures the watch UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	PollTick  time.Duration
	ThemeName string
	// LogPath is the JSON log file shown in the logs view; empty when
	// logging goes to stderr.
	LogPath string
	Origin  string
	// OnThemeChange is called with the new theme name after T cycles it.
	OnThemeChange func(name string)
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	store    *state.Store
	pollTick time.Duration
	logPath  string
	origin   string
	now      func() time.Time

	onThemeChange func(string)

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot state.Snapshot

	dashViewport viewport.Model

	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	return Model{
		ctx:           ctx,
		store:         opts.Store,
		pollTick:      pollTick,
		logPath:       opts.LogPath,
		origin:        opts.Origin,
		now:           time.Now,
		onThemeChange: opts.OnThemeChange,
		theme:         GetTheme(opts.ThemeName),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		currentView:   ViewDashboard,
		logState:      newLogState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.dashViewport = viewport.New(msg.Width, max(msg.Height-2, 0))
			m.logViewport = viewport.New(max(msg.Width-4, 0), max(msg.Height-5, 0))
		}
		m.ready = true
		m.updateDashboardViewport()
		m.logState.contentVersion++
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m, m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.updateDashboardViewport()
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case logErrorMsg:
		m.logState.err = msg.err
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderHeader() + "\n" + m.renderCommandBar() + "\n" + m.renderContent()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.dashViewport.View()
	}
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	return styles.Title.Render("Keyboard Shortcuts") + "\n\n" +
		h.View(m.keys) + "\n\n" +
		styles.FaintText.Render("Press any key to close")
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		m.showHelp = false
		return nil
	}
	// The search prompt owns the keyboard while it is open.
	if m.currentView == ViewLogs && m.logState.searchActive {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.updateDashboardViewport()
		m.logState.contentVersion++
		m.updateLogViewport()
		return themeChangedCmd(m.onThemeChange, m.theme.Name)
	case key.Matches(msg, m.keys.Tab):
		if m.currentView == ViewDashboard {
			return m.showLogs()
		}
		m.currentView = ViewDashboard
		return nil
	case key.Matches(msg, m.keys.ViewLogs):
		return m.showLogs()
	case key.Matches(msg, m.keys.ViewDashboard):
		m.currentView = ViewDashboard
		return nil
	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewLogs && m.logState.searchRegex != nil {
			m.clearLogSearch()
			m.updateLogViewport()
			return nil
		}
		m.currentView = ViewDashboard
		return nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m *Model) showLogs() tea.Cmd {
	m.currentView = ViewLogs
	return m.refreshLogs(true)
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.dashViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.dashViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.dashViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.dashViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageDown):
		m.dashViewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.dashViewport.PageUp()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.dashViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.dashViewport.HalfPageUp()
	}
	return nil
}

func (m *Model) updateDashboardViewport() {
	if !m.ready {
		return
	}
	m.dashViewport.Width = m.width
	m.dashViewport.Height = max(m.height-2, 0)
	m.dashViewport.SetContent(m.renderDashboardContent())
}

func (m *Model) handleTick() tea.Cmd {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(false); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func themeChangedCmd(fn func(string), name string) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn(name)
		return nil
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context ends.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
