package markdown

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_HeadingListParagraph(t *testing.T) {
	got := Parse("### Title\n- a\n- b\n\n**bold** text")
	want := []Block{
		{Kind: KindHeading, Level: 3, Text: "Title"},
		{Kind: KindList, Items: []string{"a", "b"}},
		{Kind: KindParagraph, Text: "**bold** text"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
	spans := Spans(got[2].Text)
	wantSpans := []Span{{Text: "bold", Bold: true}, {Text: " text"}}
	if diff := cmp.Diff(wantSpans, spans); diff != "" {
		t.Errorf("Spans mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TableWithDelimiter(t *testing.T) {
	got := Parse("A | B\n---|---\n1 | 2\n3 | 4")
	want := []Block{{
		Kind:   KindTable,
		Header: []string{"A", "B"},
		Rows:   [][]string{{"1", "2"}, {"3", "4"}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PipeTableWithOuterBars(t *testing.T) {
	got := Parse("| 항목 | 금액 |\n|:--|--:|\n| 월급 | 3,000,000 |\n\n끝")
	want := []Block{
		{Kind: KindTable, Header: []string{"항목", "금액"}, Rows: [][]string{{"월급", "3,000,000"}}},
		{Kind: KindParagraph, Text: "끝"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SinglePipeIsParagraph(t *testing.T) {
	got := Parse("a | b")
	want := []Block{{Kind: KindParagraph, Text: "a | b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_HeaderOnlyTableFlushesOnText(t *testing.T) {
	got := Parse("x | y | z\nplain")
	want := []Block{
		{Kind: KindTable, Header: []string{"x", "y", "z"}},
		{Kind: KindParagraph, Text: "plain"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_EmptyCellsProduceNothing(t *testing.T) {
	if got := Parse("| | |"); len(got) != 0 {
		t.Errorf("expected no blocks, got %v", got)
	}
}

func TestParse_LiteralNewlineEscapes(t *testing.T) {
	got := Parse(`# A\nB`)
	want := []Block{
		{Kind: KindHeading, Level: 1, Text: "A"},
		{Kind: KindParagraph, Text: "B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_HeadingLevels(t *testing.T) {
	got := Parse("# one\n## two\n### three\n#### four\n##### deep")
	var levels []int
	for _, b := range got {
		levels = append(levels, b.Level)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 4}, levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if got[4].Text != "# deep" {
		t.Errorf("deep heading text = %q, want %q", got[4].Text, "# deep")
	}
}

func TestParse_RuleAndEmptyListMarker(t *testing.T) {
	got := Parse("---\n-\n*")
	want := []Block{{Kind: KindRule}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ListRunsSplitByOtherBlocks(t *testing.T) {
	got := Parse("- a\n* b\n# H\n- c\n\n- d")
	want := []Block{
		{Kind: KindList, Items: []string{"a", "b"}},
		{Kind: KindHeading, Level: 1, Text: "H"},
		{Kind: KindList, Items: []string{"c"}},
		{Kind: KindList, Items: []string{"d"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TableThenList(t *testing.T) {
	got := Parse("a | b | c\n1 | 2 | 3\n- item")
	want := []Block{
		{Kind: KindTable, Header: []string{"a", "b", "c"}, Rows: [][]string{{"1", "2", "3"}}},
		{Kind: KindList, Items: []string{"item"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"****",
		"**unclosed",
		"|",
		"||||",
		"#",
		"- - -",
		"\\n\\n",
		strings.Repeat("|", 100),
		"한글 **굵게** 문장",
	}
	for _, in := range inputs {
		for _, b := range Parse(in) {
			if b.Kind < KindHeading || b.Kind > KindParagraph {
				t.Errorf("Parse(%q): invalid kind %d", in, b.Kind)
			}
			if b.Kind == KindHeading && (b.Level < 1 || b.Level > 4) {
				t.Errorf("Parse(%q): heading level %d out of range", in, b.Level)
			}
		}
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		in   string
		want []Span
	}{
		{"plain", []Span{{Text: "plain"}}},
		{"a **b** c **d**", []Span{{Text: "a "}, {Text: "b", Bold: true}, {Text: " c "}, {Text: "d", Bold: true}}},
		{"**unclosed", []Span{{Text: "**unclosed"}}},
		{"****", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Spans(tt.in)); diff != "" {
			t.Errorf("Spans(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestHTML_EscapesText(t *testing.T) {
	out := string(HTML(Parse("<script>**x**</script>\n## 제목 & 요약")))
	if !strings.Contains(out, "<p>&lt;script&gt;<strong>x</strong>&lt;/script&gt;</p>") {
		t.Errorf("paragraph not escaped: %s", out)
	}
	if !strings.Contains(out, "<h2>제목 &amp; 요약</h2>") {
		t.Errorf("heading not rendered: %s", out)
	}
}

func TestHTML_Table(t *testing.T) {
	out := string(HTML(Parse("A | B\n---|---\n**1** | 2")))
	want := `<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td><strong>1</strong></td><td>2</td></tr></tbody></table>`
	if !strings.Contains(out, want) {
		t.Errorf("HTML = %s\nwant substring %s", out, want)
	}
}

func TestText_RoundTripParagraphs(t *testing.T) {
	blocks := Parse("one\ntwo **bold**\n\nthree")
	if diff := cmp.Diff(blocks, Parse(Text(blocks))); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestText_RoundTripMixed(t *testing.T) {
	blocks := Parse("### Title\n- a\n- b\nA | B\n---|---\n1 | 2\n---\nclosing")
	if diff := cmp.Diff(blocks, Parse(Text(blocks))); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
