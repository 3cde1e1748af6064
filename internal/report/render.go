// Package report turns raw completion text into display blocks.
package report

import "strings"

type Kind int

const (
	Paragraph Kind = iota
	Section
	Subsection
	ListItem
	Spacer
)

func (k Kind) String() string {
	switch k {
	case Section:
		return "section"
	case Subsection:
		return "subsection"
	case ListItem:
		return "list-item"
	case Spacer:
		return "spacer"
	default:
		return "paragraph"
	}
}

type Block struct {
	Kind Kind
	Text string
}

type Document struct {
	Blocks []Block
}

// Render strips every asterisk and classifies each line by its prefix.
// Headings and list items are recognised only at the start of a line.
func Render(raw string) Document {
	clean := strings.ReplaceAll(raw, "*", "")
	lines := strings.Split(clean, "\n")
	doc := Document{Blocks: make([]Block, 0, len(lines))}
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "### "):
			doc.Blocks = append(doc.Blocks, Block{Kind: Subsection, Text: strings.TrimPrefix(line, "### ")})
		case strings.HasPrefix(line, "## "):
			doc.Blocks = append(doc.Blocks, Block{Kind: Section, Text: strings.TrimPrefix(line, "## ")})
		case strings.HasPrefix(line, "- "):
			doc.Blocks = append(doc.Blocks, Block{Kind: ListItem, Text: strings.TrimPrefix(line, "- ")})
		case strings.TrimSpace(line) == "":
			doc.Blocks = append(doc.Blocks, Block{Kind: Spacer})
		default:
			doc.Blocks = append(doc.Blocks, Block{Kind: Paragraph, Text: line})
		}
	}
	return doc
}

// String is a plain-text rendition: headings underlined, list items bulleted.
func (d Document) String() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		switch blk.Kind {
		case Section:
			b.WriteString(blk.Text + "\n" + strings.Repeat("=", len([]rune(blk.Text))) + "\n")
		case Subsection:
			b.WriteString(blk.Text + "\n" + strings.Repeat("-", len([]rune(blk.Text))) + "\n")
		case ListItem:
			b.WriteString("  • " + blk.Text + "\n")
		case Spacer:
			b.WriteString("\n")
		default:
			b.WriteString(blk.Text + "\n")
		}
	}
	return b.String()
}
