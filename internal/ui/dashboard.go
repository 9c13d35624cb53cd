package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/keybot/keybot/internal/api"
	"github.com/keybot/keybot/internal/keybot"
)

const recentCallLimit = 8

// RenderSummary renders a dashboard summary for one-shot terminal output.
func RenderSummary(s keybot.Summary, theme Theme, width int, now time.Time) string {
	return renderSummary(theme.Styles(), s, width, now)
}

func renderSummary(styles Styles, s keybot.Summary, width int, now time.Time) string {
	sections := []string{
		renderStatTiles(styles, s),
		renderQuoteStatuses(styles, s.QuotesByStatus),
		renderUpcoming(styles, s.Upcoming, width, now),
		renderRecentCalls(styles, s.RecentCalls, width),
	}
	return strings.Join(sections, "\n\n")
}

func renderStatTiles(styles Styles, s keybot.Summary) string {
	tile := func(label string, n int) string {
		return styles.Panel.Render(
			styles.MutedText.Render(label) + "\n" + styles.Title.Render(fmt.Sprintf("%d", n)),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Customers", s.Customers), " ",
		tile("Quotes", s.Quotes), " ",
		tile("Appointments", s.Appointments),
	)
}

func renderQuoteStatuses(styles Styles, counts map[string]int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Quotes by status"))
	b.WriteString("\n")
	if len(counts) == 0 {
		b.WriteString(styles.MutedText.Render("No quotes"))
		return b.String()
	}
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	chips := make([]string, 0, len(statuses))
	for _, status := range statuses {
		chips = append(chips, styles.StatusStyle(status).Render(status)+" "+styles.Text.Render(fmt.Sprintf("%d", counts[status])))
	}
	b.WriteString(strings.Join(chips, "  "))
	return b.String()
}

func renderUpcoming(styles Styles, appts []keybot.Appointment, width int, now time.Time) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Upcoming appointments"))
	if len(appts) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("No upcoming appointments"))
		return b.String()
	}
	nameWidth := 24
	if width > 0 && width < 100 {
		nameWidth = 16
	}
	for _, a := range appts {
		start := a.ParsedStart()
		when := start.Local().Format("Mon Jan 2 15:04")
		rel := "in " + humanizeDuration(start.Sub(now))
		who := a.CustomerName
		if who == "" {
			who = a.Title
		}
		line := strings.Join([]string{
			styles.AccentText.Render(when),
			styles.MutedText.Render(fmt.Sprintf("%-9s", rel)),
			styles.Text.Render(fmt.Sprintf("%-*s", nameWidth, truncateMiddle(who, nameWidth))),
			styles.MutedText.Render(a.ServiceType),
		}, "  ")
		if tech := strings.TrimSpace(a.TechnicianName); tech != "" {
			line += styles.FaintText.Render(" · " + tech)
		}
		if a.Status != "" {
			line += " " + styles.StatusStyle(a.Status).Render(a.Status)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func renderRecentCalls(styles Styles, calls []keybot.RecentCall, width int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Recent calls"))
	if len(calls) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("No recent calls"))
		return b.String()
	}
	if len(calls) > recentCallLimit {
		calls = calls[:recentCallLimit]
	}
	for _, c := range calls {
		when := c.Timestamp
		if ts, err := time.Parse(time.RFC3339, c.Timestamp); err == nil {
			when = ts.Local().Format("Jan 2 15:04")
		}
		line := fmt.Sprintf("%s  %s  %s",
			styles.MutedText.Render(when),
			styles.Text.Render(c.PhoneNumber),
			styles.FaintText.Render(callDuration(c.DurationTime())),
		)
		if c.CallType != "" {
			line += " " + styles.StatusStyle(c.CallType).Render(c.CallType)
		}
		if notes := strings.TrimSpace(c.Notes); notes != "" && width >= 100 {
			line += styles.FaintText.Render("  " + truncateMiddle(notes, 40))
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("keybot", styles.Logo)}

	switch {
	case !m.snapshot.HasSummary && m.snapshot.LastError != nil:
		parts = append(parts,
			bg.Render("API "+classifyConnectionError(m.snapshot.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		)
	case !m.snapshot.HasSummary:
		parts = append(parts, bg.Render("Connecting to KeyBot...", styles.WarningText.Bold(true)))
	case m.snapshot.IsOffline():
		parts = append(parts,
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render(classifyConnectionError(m.snapshot.LastError), styles.WarningText),
		)
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	if m.origin != "" && m.width >= 80 {
		parts = append(parts, bg.Render(truncateMiddle(m.origin, 40), styles.MutedText))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts,
			bg.Render("updated", styles.FaintText)+bg.Space()+
				bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"space", followLabel},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"d", "Dashboard"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if m.currentView == ViewLogs && m.logState.searchQuery != "" {
		segments = append(segments, bg.Render("/"+truncateMiddle(m.logState.searchQuery, 18), styles.AccentText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}

// classifyConnectionError turns a poll failure into a short header label.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	ae, ok := api.AsError(err)
	if !ok {
		return "ERROR"
	}
	switch ae.Kind {
	case api.KindTransport, api.KindExhausted:
		return "UNREACHABLE"
	case api.KindTimeout:
		return "TIMEOUT"
	case api.KindStatus:
		if ae.StatusCode == 401 || ae.StatusCode == 403 {
			return "UNAUTHORIZED"
		}
		return fmt.Sprintf("HTTP %d", ae.StatusCode)
	default:
		return "ERROR"
	}
}

func errorMessage(err error) string {
	if ae, ok := api.AsError(err); ok {
		return ae.Message()
	}
	return err.Error()
}

// renderDashboardContent renders the scrollable dashboard body.
func (m Model) renderDashboardContent() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	if !snap.HasSummary {
		if snap.LastError != nil {
			return styles.DangerText.Render(errorMessage(snap.LastError))
		}
		return styles.MutedText.Render("Waiting for dashboard data...")
	}
	body := renderSummary(styles, snap.Summary, m.width, m.now())
	if snap.LastError != nil {
		body = styles.WarningText.Render("Last refresh failed: "+errorMessage(snap.LastError)) + "\n\n" + body
	}
	return body
}
