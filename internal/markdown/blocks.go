// Package markdown renders the constrained markdown dialect produced by the
// analysis service: headings, bold spans, unordered lists, pipe tables,
// horizontal rules and paragraphs.
package markdown

// Kind identifies the type of a Block.
type Kind int

// Block kinds.
const (
	KindHeading Kind = iota + 1
	KindList
	KindTable
	KindRule
	KindParagraph
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindRule:
		return "rule"
	case KindParagraph:
		return "paragraph"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is one display block. Which fields are set depends on Kind:
// Level and Text for headings, Items for lists, Header and Rows for tables,
// Text for paragraphs. Text fields keep their inline markup; use Spans to
// split them.
type Block struct {
	Kind   Kind       `json:"kind"`
	Level  int        `json:"level,omitempty"`
	Text   string     `json:"text,omitempty"`
	Items  []string   `json:"items,omitempty"`
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows,omitempty"`
}
