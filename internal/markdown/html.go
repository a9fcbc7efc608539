package markdown

import (
	"fmt"
	"html/template"
	"strings"
)

// HTML renders blocks as an escaped HTML fragment.
func HTML(blocks []Block) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="markdown-content">`)
	for _, blk := range blocks {
		switch blk.Kind {
		case KindHeading:
			fmt.Fprintf(&b, "<h%d>", blk.Level)
			writeInline(&b, blk.Text)
			fmt.Fprintf(&b, "</h%d>", blk.Level)
		case KindList:
			b.WriteString("<ul>")
			for _, item := range blk.Items {
				b.WriteString("<li>")
				writeInline(&b, item)
				b.WriteString("</li>")
			}
			b.WriteString("</ul>")
		case KindTable:
			b.WriteString("<table><thead><tr>")
			for _, cell := range blk.Header {
				b.WriteString("<th>")
				writeInline(&b, cell)
				b.WriteString("</th>")
			}
			b.WriteString("</tr></thead><tbody>")
			for _, row := range blk.Rows {
				b.WriteString("<tr>")
				for _, cell := range row {
					b.WriteString("<td>")
					writeInline(&b, cell)
					b.WriteString("</td>")
				}
				b.WriteString("</tr>")
			}
			b.WriteString("</tbody></table>")
		case KindRule:
			b.WriteString("<hr>")
		case KindParagraph:
			b.WriteString("<p>")
			writeInline(&b, blk.Text)
			b.WriteString("</p>")
		}
	}
	b.WriteString("</div>")
	return template.HTML(b.String()) //nolint:gosec // every text run is escaped in writeInline
}

func writeInline(b *strings.Builder, text string) {
	for _, s := range Spans(text) {
		if s.Bold {
			b.WriteString("<strong>")
			b.WriteString(template.HTMLEscapeString(s.Text))
			b.WriteString("</strong>")
			continue
		}
		b.WriteString(template.HTMLEscapeString(s.Text))
	}
}

// Text serialises blocks back into the dialect. Parse(Text(blocks)) yields
// blocks again.
func Text(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Kind {
		case KindHeading:
			parts = append(parts, strings.Repeat("#", blk.Level)+" "+blk.Text)
		case KindList:
			lines := make([]string, len(blk.Items))
			for i, item := range blk.Items {
				lines[i] = "- " + item
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case KindTable:
			lines := []string{strings.Join(blk.Header, " | ")}
			sep := make([]string, len(blk.Header))
			for i := range sep {
				sep[i] = "---"
			}
			lines = append(lines, strings.Join(sep, " | "))
			for _, row := range blk.Rows {
				lines = append(lines, strings.Join(row, " | "))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case KindRule:
			parts = append(parts, "---")
		case KindParagraph:
			parts = append(parts, blk.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
