package markdown

import "strings"

// headingPrefixes is ordered longest first so "####" is not read as "#".
var headingPrefixes = []struct {
	prefix string
	level  int
}{
	{"####", 4},
	{"###", 3},
	{"##", 2},
	{"#", 1},
}

type parser struct {
	out []Block

	list []string

	inTable bool
	header  []string
	rows    [][]string
}

// Parse converts content into display blocks in input order. Literal "\n"
// escape sequences are treated as newlines. Parse never fails; anything it
// does not recognise becomes a paragraph.
func Parse(content string) []Block {
	content = strings.ReplaceAll(content, `\n`, "\n")
	lines := strings.Split(content, "\n")

	p := &parser{}
	for i, line := range lines {
		next := ""
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}
		p.line(strings.TrimSpace(line), next)
	}
	p.flushList()
	p.flushTable()
	return p.out
}

func (p *parser) line(trimmed, next string) {
	if p.isTableLine(trimmed, next) {
		p.flushList()
		cells := splitCells(trimmed)
		if len(cells) == 0 {
			return
		}
		switch {
		case !p.inTable:
			p.header = cells
			p.inTable = true
		case strings.Contains(trimmed, "---") || isDelimiterRow(trimmed):
			// separator row
		default:
			p.rows = append(p.rows, cells)
		}
		return
	}
	if p.inTable {
		p.flushTable()
	}

	if level, text, ok := heading(trimmed); ok {
		p.flushList()
		p.out = append(p.out, Block{Kind: KindHeading, Level: level, Text: text})
		return
	}

	if strings.HasPrefix(trimmed, "---") {
		p.flushList()
		p.out = append(p.out, Block{Kind: KindRule})
		return
	}

	if text, ok := listItem(trimmed); ok {
		if text != "" {
			p.list = append(p.list, text)
		}
		return
	}

	p.flushList()
	if trimmed != "" {
		p.out = append(p.out, Block{Kind: KindParagraph, Text: trimmed})
	}
}

// isTableLine reports whether trimmed belongs to a pipe table. A line needs
// more than two pipe-delimited segments, unless a table is already open or
// the next line is a delimiter row.
func (p *parser) isTableLine(trimmed, next string) bool {
	if !strings.Contains(trimmed, "|") {
		return false
	}
	if len(strings.Split(trimmed, "|")) > 2 || p.inTable {
		return true
	}
	return isDelimiterRow(next)
}

func (p *parser) flushList() {
	if len(p.list) == 0 {
		return
	}
	p.out = append(p.out, Block{Kind: KindList, Items: p.list})
	p.list = nil
}

func (p *parser) flushTable() {
	if p.inTable {
		p.out = append(p.out, Block{Kind: KindTable, Header: p.header, Rows: p.rows})
	}
	p.inTable = false
	p.header = nil
	p.rows = nil
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func isDelimiterRow(line string) bool {
	if !strings.Contains(line, "|") || !strings.Contains(line, "-") {
		return false
	}
	return strings.Trim(line, "|-: ") == ""
}

func heading(trimmed string) (int, string, bool) {
	for _, h := range headingPrefixes {
		if strings.HasPrefix(trimmed, h.prefix) {
			return h.level, strings.TrimSpace(trimmed[len(h.prefix):]), true
		}
	}
	return 0, "", false
}

// listItem matches "- text" and "* text". The marker must stand alone or be
// followed by whitespace, so "**bold** text" stays a paragraph.
func listItem(trimmed string) (string, bool) {
	if trimmed == "-" || trimmed == "*" {
		return "", true
	}
	if len(trimmed) < 2 || (trimmed[0] != '-' && trimmed[0] != '*') {
		return "", false
	}
	if trimmed[1] != ' ' && trimmed[1] != '\t' {
		return "", false
	}
	return strings.TrimSpace(trimmed[1:]), true
}
