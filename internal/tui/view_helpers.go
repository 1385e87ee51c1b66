package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, footer string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		b.WriteString(data)
	} else {
		b.WriteString("-")
	}
	b.WriteString("\n\n")
	b.WriteString(uiDivider)

	if strings.TrimSpace(footer) != "" {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(footer))
	}

	return appStyle.Render(b.String())
}

// renderRows aligns label/value pairs into two columns.
func renderRows(rows [][2]string) string {
	labelWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		label := labelStyle.Width(labelWidth).Render(row[0])
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, "  ", row[1]))
	}
	return strings.Join(lines, "\n")
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
