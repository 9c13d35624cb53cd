package ui

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keybot/keybot/internal/logtail"
)

const (
	logRefreshInterval = 2 * time.Second
	logBufferLimit     = 2000
)

// logState holds all log-related state.
type logState struct {
	rawLines    []string
	follow      bool
	lastRefresh time.Time
	err         error

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchMatches  []int // Line indices that match
	searchMatchIdx int   // Current match index

	// Content caching - skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

func newLogState() logState {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100
	return logState{follow: true, searchInput: ti}
}

type logLinesMsg []string

type logErrorMsg struct{ err error }

func fetchLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logBufferLimit)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(lines)
	}
}

// refreshLogs schedules a log read unless one ran recently.
func (m *Model) refreshLogs(force bool) tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	if !force && time.Since(m.logState.lastRefresh) < logRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()
	return fetchLogsCmd(m.logPath)
}

func (m *Model) handleLogLines(lines []string) {
	m.logState.err = nil
	if slices.Equal(m.logState.rawLines, lines) {
		return
	}
	m.logState.rawLines = lines
	m.logState.contentVersion++
	if m.logState.searchRegex != nil {
		m.findSearchMatches()
	}
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	m.logViewport.Width = max(m.width-4, 0)
	m.logViewport.Height = max(m.height-5, 0)

	if m.logState.lastRendered == 0 || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = max(m.logState.contentVersion, 1)
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	box := styles.Panel.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 0)).
		Render(m.logViewport.View())
	return box + "\n" + m.renderLogStatus(styles)
}

func (m Model) renderLogStatus(styles Styles) string {
	switch {
	case m.logState.searchActive:
		return styles.AccentText.Render("search: ") + m.logState.searchInput.View()
	case m.logState.searchRegex != nil && len(m.logState.searchMatches) > 0:
		return styles.AccentText.Render("/"+m.logState.searchQuery) +
			styles.FaintText.Render(" - ") +
			styles.WarningText.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches))) +
			styles.FaintText.Render(" - n next, N previous, esc to clear")
	case m.logState.searchRegex != nil:
		return styles.DangerText.Render("Pattern not found: " + m.logState.searchQuery)
	case m.logState.err != nil:
		return styles.DangerText.Render("Log unavailable: " + m.logState.err.Error())
	}
	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	return styles.FaintText.Render(fmt.Sprintf("%d lines  auto-tail %s  ", len(m.logState.rawLines), autoTail)) +
		styles.MutedText.Render(truncateMiddle(m.logPath, 60))
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to stderr; no log file to show")
	}
	if len(m.logState.rawLines) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	matchSet := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matchSet[idx] = true
	}
	activeMatchLine := -1
	if len(m.logState.searchMatches) > 0 && m.logState.searchMatchIdx < len(m.logState.searchMatches) {
		activeMatchLine = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, line := range m.logState.rawLines {
		gutter := fmt.Sprintf("%4d │ ", i+1)
		switch {
		case i == activeMatchLine:
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background))
			b.WriteString(hl.Render(gutter + logtail.Format(line)))
		case matchSet[i]:
			b.WriteString(styles.AccentText.Render(gutter + logtail.Format(line)))
		default:
			b.WriteString(styles.FaintText.Render(gutter))
			b.WriteString(colorizeLogLine(line, styles))
		}
		if i < len(m.logState.rawLines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeLogLine styles a JSON log record by field; other lines are shown as
// plain text.
func colorizeLogLine(line string, styles Styles) string {
	rec, ok := logtail.Parse(line)
	if !ok {
		return styles.Text.Render(line)
	}
	var parts []string
	if !rec.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(rec.Time.Local().Format(time.TimeOnly)))
	}
	if rec.Level != "" {
		parts = append(parts, levelStyle(rec.Level, styles).Bold(true).Render(rec.Level))
	}
	parts = append(parts, styles.Text.Render(rec.Message))
	for _, a := range rec.Attrs {
		value := a.Value
		if strings.ContainsAny(value, " \t") {
			value = fmt.Sprintf("%q", value)
		}
		parts = append(parts, styles.MutedText.Render(a.Key+"=")+styles.InfoText.Render(value))
	}
	return strings.Join(parts, " ")
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}

// handleLogsKey processes keyboard input for the logs view.
func (m *Model) handleLogsKey(msg tea.KeyMsg) tea.Cmd {
	if m.logState.searchActive {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		return m.logState.searchInput.Focus()
	case key.Matches(msg, m.keys.NextMatch):
		m.nextSearchMatch()
	case key.Matches(msg, m.keys.PrevMatch):
		m.previousSearchMatch()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}
	return nil
}

func (m *Model) handleLogSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.logState.searchInput.Value()
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		if query == "" {
			return nil
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid pattern: stay in search mode so it can be fixed
			m.logState.searchActive = true
			return m.logState.searchInput.Focus()
		}
		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.findSearchMatches()
		if len(m.logState.searchMatches) > 0 {
			m.logState.searchMatchIdx = 0
			m.scrollToSearchMatch()
		}
		m.updateLogViewport()
		return nil

	case key.Matches(msg, m.keys.Escape):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return cmd
}

func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentVersion++
}

func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, line := range m.logState.rawLines {
		if m.logState.searchRegex.MatchString(line) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
	m.logState.contentVersion++
}

func (m *Model) nextSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx + 1) % len(m.logState.searchMatches)
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

func (m *Model) previousSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	n := len(m.logState.searchMatches)
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx - 1 + n) % n
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch centers the current match when possible.
func (m *Model) scrollToSearchMatch() {
	if len(m.logState.searchMatches) == 0 || m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}
