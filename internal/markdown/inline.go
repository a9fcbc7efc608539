package markdown

import "regexp"

var boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Span is a run of inline text.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Spans splits text on **bold** markers. Bold is the only inline markup.
func Spans(text string) []Span {
	var out []Span
	last := 0
	for _, m := range boldRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, Span{Text: text[last:m[0]]})
		}
		if m[3] > m[2] {
			out = append(out, Span{Text: text[m[2]:m[3]], Bold: true})
		}
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Span{Text: text[last:]})
	}
	return out
}
