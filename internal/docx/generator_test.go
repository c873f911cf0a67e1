package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	godocx "github.com/fumiama/go-docx"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/document"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func numberedConfig(t *testing.T) *config.Conversion {
	t.Helper()
	cfg := config.DefaultConversion()
	h1 := cfg.Styles.Headings[1]
	h1.Numbering = "%1."
	cfg.Styles.Headings[1] = h1
	h2 := cfg.Styles.Headings[2]
	h2.Numbering = "%1.%2"
	cfg.Styles.Headings[2] = h2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

func heading(level int, text string) document.Heading {
	return document.Heading{Level: level, Inlines: []document.Inline{document.Text{Value: text}}}
}

func para(text string) document.Paragraph {
	return document.Paragraph{Inlines: []document.Inline{document.Text{Value: text}}}
}

// paragraphTexts reads the generated bytes back and returns the text of
// every top-level paragraph.
func paragraphTexts(t *testing.T, b []byte) []string {
	t.Helper()
	parsed, err := godocx.Parse(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("parse generated docx: %v", err)
	}
	var out []string
	for _, item := range parsed.Document.Body.Items {
		p, ok := item.(*godocx.Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, child := range p.Children {
			run, ok := child.(*godocx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if txt, ok := rc.(*godocx.Text); ok {
					sb.WriteString(txt.Text)
				}
			}
		}
		out = append(out, sb.String())
	}
	return out
}

// documentXML extracts word/document.xml from the generated file,
// lowercased for case-stable substring checks.
func documentXML(t *testing.T, b []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("open generated docx as zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return strings.ToLower(string(data))
	}
	t.Fatal("word/document.xml missing from generated file")
	return ""
}

func hasText(texts []string, want string) bool {
	for _, s := range texts {
		if s == want {
			return true
		}
	}
	return false
}

func TestGenerator_NumbersHeadingsAcrossDocument(t *testing.T) {
	g := NewGenerator(numberedConfig(t), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		heading(1, "Introduction"),
		para("Body text."),
		heading(2, "Background"),
		heading(2, "Goals"),
		heading(1, "Methods"),
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := paragraphTexts(t, b)
	for _, want := range []string{
		"1. Introduction",
		"Body text.",
		"1.1 Background",
		"1.2 Goals",
		"2. Methods",
	} {
		if !hasText(texts, want) {
			t.Errorf("expected paragraph %q, got %v", want, texts)
		}
	}
}

func TestGenerator_NoNumberingKeepsHeadingText(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	b, err := g.Generate(&document.Document{Blocks: []document.Block{heading(1, "Overview")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := paragraphTexts(t, b)
	if !hasText(texts, "Overview") {
		t.Errorf("expected plain heading, got %v", texts)
	}
	if hasText(texts, "1. Overview") {
		t.Error("heading was numbered without numbering configured")
	}
}

func TestGenerator_BrokenTemplateDegradesOnlyThatLevel(t *testing.T) {
	cfg := config.DefaultConversion()
	h1 := cfg.Styles.Headings[1]
	h1.Numbering = "%x"
	cfg.Styles.Headings[1] = h1
	h2 := cfg.Styles.Headings[2]
	h2.Numbering = "%1.%2."
	cfg.Styles.Headings[2] = h2

	g := NewGenerator(cfg, testLogger())
	b, err := g.Generate(&document.Document{Blocks: []document.Block{
		heading(1, "Alpha"),
		heading(2, "Beta"),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := paragraphTexts(t, b)
	if !hasText(texts, "Alpha") {
		t.Errorf("expected unnumbered heading for broken template, got %v", texts)
	}
	if !hasText(texts, "1.1. Beta") {
		t.Errorf("expected level 2 still numbered, got %v", texts)
	}
}

func TestGenerator_ListMarkers(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		document.List{Items: []document.ListItem{
			{
				Inlines: []document.Inline{document.Text{Value: "parent"}},
				Children: []document.List{{Items: []document.ListItem{
					{Inlines: []document.Inline{document.Text{Value: "child"}}},
				}}},
			},
		}},
		document.List{Ordered: true, Items: []document.ListItem{
			{Inlines: []document.Inline{document.Text{Value: "first"}}},
			{Inlines: []document.Inline{document.Text{Value: "second"}}},
		}},
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := paragraphTexts(t, b)
	for _, want := range []string{
		"• parent",
		"    ◦ child",
		"1. first",
		"2. second",
	} {
		if !hasText(texts, want) {
			t.Errorf("expected list paragraph %q, got %v", want, texts)
		}
	}
}

func TestGenerator_ImagePlaceholders(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		document.Image{Alt: "chart", URL: "https://example.com/chart.png"},
		document.Image{Alt: "logo", URL: "testdata/does-not-exist.png"},
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := paragraphTexts(t, b)
	if !hasText(texts, "[Image: chart - URL: https://example.com/chart.png]") {
		t.Errorf("expected remote image placeholder, got %v", texts)
	}
	if !hasText(texts, "[Image: logo - File not found: testdata/does-not-exist.png]") {
		t.Errorf("expected missing file placeholder, got %v", texts)
	}
}

func TestGenerator_HorizontalRule(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	b, err := g.Generate(&document.Document{Blocks: []document.Block{document.HorizontalRule{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasText(paragraphTexts(t, b), strings.Repeat("─", 50)) {
		t.Error("expected dash rule paragraph")
	}
}

func TestGenerator_CodeBlockFraming(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		document.CodeBlock{Language: "go", Code: "func main() {\n\tprintln(1)\n}"},
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xml := documentXML(t, b)
	if !strings.Contains(xml, "<w:tbl>") {
		t.Error("expected code block rendered inside a table")
	}
	if !strings.Contains(xml, "func main() {") {
		t.Error("expected first code line in output")
	}
	if !strings.Contains(xml, "    println(1)") {
		t.Error("expected tab converted to four spaces")
	}
	if !strings.Contains(xml, `w:ascii="courier new"`) {
		t.Error("expected code font applied")
	}
	if !strings.Contains(xml, `w:fill="f5f5f5"`) {
		t.Error("expected code background shading")
	}
}

func TestGenerator_TableCells(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		document.Table{
			Headers: []string{"Name", "Role"},
			Rows:    [][]string{{"Ada", "Engineer"}, {"Grace"}},
		},
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xml := documentXML(t, b)
	if !strings.Contains(xml, "<w:tbl>") {
		t.Fatal("expected a table in output")
	}
	for _, want := range []string{"name", "role", "ada", "engineer", "grace"} {
		if !strings.Contains(xml, ">"+want+"<") {
			t.Errorf("expected cell text %q in output", want)
		}
	}
}

func TestGenerator_HeadingStyleAttributes(t *testing.T) {
	cfg := config.DefaultConversion()
	h1 := cfg.Styles.Headings[1]
	h1.Alignment = "center"
	cfg.Styles.Headings[1] = h1

	g := NewGenerator(cfg, testLogger())
	b, err := g.Generate(&document.Document{Blocks: []document.Block{heading(1, "Centered")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xml := documentXML(t, b)
	if !strings.Contains(xml, `<w:jc w:val="center"`) {
		t.Error("expected centered justification")
	}
	// Level 1 defaults to 18pt, stored as half-points.
	if !strings.Contains(xml, `w:val="36"`) {
		t.Error("expected heading size 36 half-points")
	}
}

func TestGenerator_LinkStyling(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	doc := &document.Document{Blocks: []document.Block{
		document.Paragraph{Inlines: []document.Inline{
			document.Text{Value: "See "},
			document.Link{
				Inlines: []document.Inline{document.Text{Value: "the site"}},
				URL:     "https://example.com",
			},
		}},
	}}

	b, err := g.Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xml := documentXML(t, b)
	if !strings.Contains(xml, `<w:color w:val="0066cc"`) {
		t.Error("expected link color applied")
	}
	if !strings.Contains(xml, `<w:u w:val="single"`) {
		t.Error("expected link underline applied")
	}
	if !hasText(paragraphTexts(t, b), "See the site") {
		t.Error("expected link text merged into paragraph")
	}
}

func TestGenerator_EmptyDocument(t *testing.T) {
	g := NewGenerator(config.DefaultConversion(), testLogger())
	b, err := g.Generate(&document.Document{Title: "empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty docx bytes")
	}
	if _, err := godocx.Parse(bytes.NewReader(b), int64(len(b))); err != nil {
		t.Fatalf("generated file does not parse: %v", err)
	}
}

func TestListMarker(t *testing.T) {
	tests := []struct {
		ordered bool
		depth   int
		index   int
		want    string
	}{
		{true, 0, 0, "1. "},
		{true, 2, 4, "5. "},
		{false, 0, 0, "• "},
		{false, 1, 3, "◦ "},
		{false, 2, 0, "▪ "},
		{false, 3, 0, "• "},
	}
	for _, tt := range tests {
		if got := listMarker(tt.ordered, tt.depth, tt.index); got != tt.want {
			t.Errorf("listMarker(%v, %d, %d) = %q, want %q",
				tt.ordered, tt.depth, tt.index, got, tt.want)
		}
	}
}

func TestJustification(t *testing.T) {
	tests := map[string]string{
		"left":    "start",
		"right":   "end",
		"center":  "center",
		"justify": "both",
		"":        "",
		"middle":  "",
	}
	for in, want := range tests {
		if got := justification(in); got != want {
			t.Errorf("justification(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHalfPoints(t *testing.T) {
	if got := halfPoints(12); got != "24" {
		t.Errorf("halfPoints(12) = %q, want 24", got)
	}
	if got := halfPoints(11.5); got != "23" {
		t.Errorf("halfPoints(11.5) = %q, want 23", got)
	}
}

func TestHeadingStyle_FallsBackToLevelOne(t *testing.T) {
	cfg := config.DefaultConversion()
	delete(cfg.Styles.Headings, 4)
	g := NewGenerator(cfg, testLogger())

	got := g.headingStyle(4)
	if got.Font.Size != cfg.Styles.Headings[1].Font.Size {
		t.Errorf("expected level 1 fallback, got size %g", got.Font.Size)
	}

	g = NewGenerator(&config.Conversion{Document: cfg.Document}, testLogger())
	got = g.headingStyle(2)
	if got.Font.Family != cfg.Document.DefaultFont.Family {
		t.Errorf("expected default font fallback, got %q", got.Font.Family)
	}
}

func TestLocalImagePath(t *testing.T) {
	for path, want := range map[string]bool{
		"images/pic.png":          true,
		"/abs/pic.jpg":            true,
		"http://example.com/a":    false,
		"https://example.com/a":   false,
		"ftp://example.com/a.png": false,
	} {
		if got := localImagePath(path); got != want {
			t.Errorf("localImagePath(%q) = %v, want %v", path, got, want)
		}
	}
}
