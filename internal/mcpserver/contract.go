package mcpserver

// MarkdownDialect describes the markdown subset finboard renders for
// AI-generated guides and reports.
const MarkdownDialect = `# finboard Markdown Dialect

finboard renders a small, line-oriented subset of Markdown. Anything outside
it is shown as a plain paragraph.

## Blocks

Each input line is classified in this order:

1. **Table line**: contains ` + "`|`" + ` and either has more than two cells, follows
   another table line, or is followed by a delimiter row (` + "`| --- | :-: |`" + `).
   The first line is the header; delimiter rows are skipped. Leading and
   trailing pipes are optional.
2. **Heading**: ` + "`# `" + ` to ` + "`#### `" + ` (levels 1 to 4). Deeper levels render as
   level 4.
3. **Horizontal rule**: a line starting with ` + "`---`" + `.
4. **List item**: ` + "`- `" + ` or ` + "`* `" + ` followed by a space. Consecutive items form one
   list. Only one nesting level exists.
5. **Blank line**: ends the current list or table.
6. **Paragraph**: everything else, one paragraph per line.

## Inline

- ` + "`**bold**`" + ` is the only inline style. It may appear in headings, list items,
  table cells and paragraphs. An unmatched ` + "`**`" + ` is shown literally.
- HTML is always escaped.
- A literal backslash-n sequence (` + "`\\n`" + `) is treated as a line break.

## Example

` + "```" + `markdown
## 목표 달성 계획

| 기간 | 월 저축액 |
| --- | --- |
| 12개월 | **75만원** |

- 비상금을 먼저 확보하세요
- 남는 금액은 ETF에 분산 투자하세요

---
꾸준함이 가장 중요합니다.
` + "```" + `
`
