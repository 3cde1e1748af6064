package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginTop(1)
	subsectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))
	bulletStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA657"))
	paragraphStyle = lipgloss.NewStyle()
)

// Terminal renders the document with ANSI styling, wrapped to width when width > 0.
func Terminal(d Document, width int) string {
	para := paragraphStyle
	if width > 0 {
		para = para.Width(width)
	}
	var b strings.Builder
	for _, blk := range d.Blocks {
		switch blk.Kind {
		case Section:
			b.WriteString(sectionStyle.Render(blk.Text))
		case Subsection:
			b.WriteString(subsectionStyle.Render(blk.Text))
		case ListItem:
			b.WriteString(bulletStyle.Render("  • ") + blk.Text)
		case Spacer:
		default:
			b.WriteString(para.Render(blk.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}
