package parser

import (
	"strings"
	"testing"

	"github.com/draftmill/draftmill/internal/document"
)

func mustParseMarkdown(t *testing.T, input, filename string) *document.Document {
	t.Helper()
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestMarkdownParser_HeadingsAndParagraphs(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Deep content.
`
	doc := mustParseMarkdown(t, input, "doc.md")

	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	if len(doc.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(doc.Blocks))
	}

	headings := doc.Headings()
	if len(headings) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(headings))
	}
	wantLevels := []int{1, 2, 3}
	wantTexts := []string{"Title", "Section A", "Subsection A1"}
	for i, h := range headings {
		if h.Level != wantLevels[i] {
			t.Errorf("heading %d: expected level %d, got %d", i, wantLevels[i], h.Level)
		}
		if got := document.PlainText(h.Inlines); got != wantTexts[i] {
			t.Errorf("heading %d: expected text %q, got %q", i, wantTexts[i], got)
		}
	}

	para, ok := doc.Blocks[1].(document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph after title, got %T", doc.Blocks[1])
	}
	if got := document.PlainText(para.Inlines); got != "Intro text." {
		t.Errorf("expected intro paragraph, got %q", got)
	}
}

func TestMarkdownParser_InlineStyles(t *testing.T) {
	input := "Mix of **bold**, *italic*, ~~gone~~, `code` and [a link](https://example.com \"Example\")."

	doc := mustParseMarkdown(t, input, "inline.md")
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	para, ok := doc.Blocks[0].(document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks[0])
	}

	var sawStrong, sawEmph, sawStrike, sawCode bool
	var link document.Link
	for _, in := range para.Inlines {
		switch v := in.(type) {
		case document.Strong:
			sawStrong = true
			if got := document.PlainText(v.Inlines); got != "bold" {
				t.Errorf("expected bold text %q, got %q", "bold", got)
			}
		case document.Emph:
			sawEmph = true
		case document.Strike:
			sawStrike = true
		case document.Code:
			sawCode = true
			if v.Value != "code" {
				t.Errorf("expected code span %q, got %q", "code", v.Value)
			}
		case document.Link:
			link = v
		}
	}
	if !sawStrong || !sawEmph || !sawStrike || !sawCode {
		t.Errorf("missing inline kinds: strong=%v emph=%v strike=%v code=%v",
			sawStrong, sawEmph, sawStrike, sawCode)
	}
	if link.URL != "https://example.com" {
		t.Errorf("expected link url, got %q", link.URL)
	}
	if link.Title != "Example" {
		t.Errorf("expected link title, got %q", link.Title)
	}
	if got := document.PlainText(para.Inlines); got != "Mix of bold, italic, gone, code and a link." {
		t.Errorf("plain text mismatch: %q", got)
	}
}

func TestMarkdownParser_FencedCodeBlock(t *testing.T) {
	input := "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n"

	doc := mustParseMarkdown(t, input, "code.md")
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	cb, ok := doc.Blocks[0].(document.CodeBlock)
	if !ok {
		t.Fatalf("expected code block, got %T", doc.Blocks[0])
	}
	if cb.Language != "go" {
		t.Errorf("expected language go, got %q", cb.Language)
	}
	if cb.Code != "func main() {\n\tprintln(\"hi\")\n}" {
		t.Errorf("unexpected code: %q", cb.Code)
	}
}

func TestMarkdownParser_NestedLists(t *testing.T) {
	input := `1. first
2. second
   - inner a
   - inner b
3. third
`
	doc := mustParseMarkdown(t, input, "list.md")
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	list, ok := doc.Blocks[0].(document.List)
	if !ok {
		t.Fatalf("expected list, got %T", doc.Blocks[0])
	}
	if !list.Ordered {
		t.Error("expected ordered list")
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
	if got := document.PlainText(list.Items[0].Inlines); got != "first" {
		t.Errorf("expected first item text, got %q", got)
	}

	sub := list.Items[1].Children
	if len(sub) != 1 {
		t.Fatalf("expected 1 nested list, got %d", len(sub))
	}
	if sub[0].Ordered {
		t.Error("expected unordered nested list")
	}
	if len(sub[0].Items) != 2 {
		t.Fatalf("expected 2 nested items, got %d", len(sub[0].Items))
	}
	if got := document.PlainText(sub[0].Items[1].Inlines); got != "inner b" {
		t.Errorf("expected nested item text, got %q", got)
	}
}

func TestMarkdownParser_PipeTable(t *testing.T) {
	input := `| Name | Role |
|------|------|
| Ada  | Engineer |
| Grace | Admiral |
`
	doc := mustParseMarkdown(t, input, "table.md")
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	table, ok := doc.Blocks[0].(document.Table)
	if !ok {
		t.Fatalf("expected table, got %T", doc.Blocks[0])
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Name" || table.Headers[1] != "Role" {
		t.Errorf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1][0] != "Grace" || table.Rows[1][1] != "Admiral" {
		t.Errorf("unexpected row: %v", table.Rows[1])
	}
}

func TestMarkdownParser_ImageBlockVsInline(t *testing.T) {
	input := `![diagram](fig.png "Figure 1")

Text with ![icon](icon.png) inline.
`
	doc := mustParseMarkdown(t, input, "img.md")
	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}

	img, ok := doc.Blocks[0].(document.Image)
	if !ok {
		t.Fatalf("expected block image, got %T", doc.Blocks[0])
	}
	if img.Alt != "diagram" || img.URL != "fig.png" || img.Title != "Figure 1" {
		t.Errorf("unexpected image: %+v", img)
	}

	para, ok := doc.Blocks[1].(document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks[1])
	}
	var sawInline bool
	for _, in := range para.Inlines {
		if ii, ok := in.(document.InlineImage); ok {
			sawInline = true
			if ii.URL != "icon.png" {
				t.Errorf("unexpected inline image url %q", ii.URL)
			}
		}
	}
	if !sawInline {
		t.Error("expected inline image in paragraph")
	}
}

func TestMarkdownParser_RuleAndBlockquote(t *testing.T) {
	input := `before

---

> quoted text
`
	doc := mustParseMarkdown(t, input, "misc.md")
	if len(doc.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(doc.Blocks))
	}
	if _, ok := doc.Blocks[1].(document.HorizontalRule); !ok {
		t.Errorf("expected horizontal rule, got %T", doc.Blocks[1])
	}
	// Blockquote flattens into its inner paragraph.
	para, ok := doc.Blocks[2].(document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph from blockquote, got %T", doc.Blocks[2])
	}
	if got := document.PlainText(para.Inlines); got != "quoted text" {
		t.Errorf("expected quoted text, got %q", got)
	}
}

func TestMarkdownParser_TaskList(t *testing.T) {
	input := `- [x] done thing
- [ ] open thing
`
	doc := mustParseMarkdown(t, input, "tasks.md")
	list, ok := doc.Blocks[0].(document.List)
	if !ok {
		t.Fatalf("expected list, got %T", doc.Blocks[0])
	}
	if got := document.PlainText(list.Items[0].Inlines); got != "[x] done thing" {
		t.Errorf("expected checked marker, got %q", got)
	}
	if got := document.PlainText(list.Items[1].Inlines); got != "[ ] open thing" {
		t.Errorf("expected unchecked marker, got %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	doc := mustParseMarkdown(t, "", "empty.md")
	if len(doc.Blocks) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(doc.Blocks))
	}
}

func TestMarkdownParser_SoftBreakBecomesSpace(t *testing.T) {
	doc := mustParseMarkdown(t, "line one\nline two", "wrap.md")
	para, ok := doc.Blocks[0].(document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks[0])
	}
	if got := document.PlainText(para.Inlines); got != "line one line two" {
		t.Errorf("expected soft break as space, got %q", got)
	}
}
