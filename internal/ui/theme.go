package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background  string // outermost background, also badge text
	Surface     string // header and command bar
	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors is keyed by lower-case quote, appointment and call status.
	StatusColors map[string]string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
	Panel  lipgloss.Style
	Title  lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: fg(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Footer: fg(t.Muted).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Logo:   fg(t.Warning).Bold(true),
		Panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t.Border)).Padding(0, 1),
		Title:  fg(t.Accent).Bold(true),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns a badge style for the given status. Lookup is
// case-insensitive; unknown statuses use the muted color.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[strings.ToLower(strings.TrimSpace(status))]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles painted on bgColor, for text drawn
// inside a filled bar.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo, &out.Title,
	} {
		*st = st.Background(bg)
	}
	out.Panel = s.Panel.BorderBackground(bg).Background(bg)
	return out
}

// palette is the raw material of a theme; status colors are derived from it.
type palette struct {
	name                     string
	bg, surface              string
	border, focus            string
	text, muted, faint       string
	blue, green, yellow, red string
	cyan, magenta, orange    string
}

func (p palette) theme() Theme {
	return Theme{
		Name:        p.name,
		Background:  p.bg,
		Surface:     p.surface,
		Border:      p.border,
		BorderFocus: p.focus,
		Text:        p.text,
		Muted:       p.muted,
		Faint:       p.faint,
		Accent:      p.blue,
		Success:     p.green,
		Warning:     p.yellow,
		Danger:      p.red,
		Info:        p.cyan,
		StatusColors: map[string]string{
			"pending":    p.yellow,
			"scheduled":  p.cyan,
			"confirmed":  p.blue,
			"processing": p.magenta,
			"accepted":   p.green,
			"completed":  p.green,
			"cancelled":  p.faint,
			"rejected":   p.orange,
			"failed":     p.red,
			"inbound":    p.muted,
			"outbound":   p.muted,
		},
	}
}

var palettes = []palette{
	// https://github.com/EdenEast/nightfox.nvim
	{
		name: "Nightfox", bg: "#131a24", surface: "#192330",
		border: "#39506d", focus: "#719cd6",
		text: "#cdcecf", muted: "#738091", faint: "#71839b",
		blue: "#719cd6", green: "#81b29a", yellow: "#dbc074", red: "#c94f6d",
		cyan: "#63cdcf", magenta: "#9d79d6", orange: "#f4a261",
	},
	// https://github.com/rebelot/kanagawa.nvim
	{
		name: "Kanagawa", bg: "#16161D", surface: "#1F1F28",
		border: "#54546D", focus: "#7E9CD8",
		text: "#DCD7BA", muted: "#C8C093", faint: "#727169",
		blue: "#7E9CD8", green: "#98BB6C", yellow: "#E6C384", red: "#E46876",
		cyan: "#7FB4CA", magenta: "#957FB8", orange: "#FFA066",
	},
	// Tailwind slate and sky
	{
		name: "Slate", bg: "#020617", surface: "#0f172a",
		border: "#334155", focus: "#38bdf8",
		text: "#f1f5f9", muted: "#94a3b8", faint: "#64748b",
		blue: "#38bdf8", green: "#22c55e", yellow: "#f59e0b", red: "#ef4444",
		cyan: "#06b6d4", magenta: "#a855f7", orange: "#f97316",
	},
}

// GetTheme returns a theme by name, ignoring case. Unknown names get the
// first theme.
func GetTheme(name string) Theme {
	name = strings.TrimSpace(name)
	for _, p := range palettes {
		if strings.EqualFold(p.name, name) {
			return p.theme()
		}
	}
	return palettes[0].theme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, p := range palettes {
		if p.name == current {
			return palettes[(i+1)%len(palettes)].name
		}
	}
	return palettes[0].name
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.name
	}
	return names
}
