package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderTable draws rows under headers with the theme's border and header
// colors. Cells whose header is "Status" are colored by status.
func RenderTable(theme Theme, headers []string, rows [][]string) string {
	styles := theme.Styles()
	statusCol := -1
	for i, h := range headers {
		if h == "Status" {
			statusCol = i
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Foreground(lipgloss.Color(theme.Accent)).Bold(true)
			case col == statusCol && row >= 0 && row < len(rows):
				return cell.Foreground(styles.StatusStyle(rows[row][col]).GetBackground())
			default:
				return cell.Foreground(lipgloss.Color(theme.Text))
			}
		})
	return t.Render()
}
