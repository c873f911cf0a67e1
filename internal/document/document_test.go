package document

import "testing"

func TestPlainText_NestedInlines(t *testing.T) {
	inlines := []Inline{
		Text{Value: "See "},
		Strong{Inlines: []Inline{
			Text{Value: "the "},
			Emph{Inlines: []Inline{Text{Value: "fine"}}},
		}},
		Text{Value: " "},
		Code{Value: "manual"},
	}

	got := PlainText(inlines)
	want := "See the fine manual"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainText_LinkAndImage(t *testing.T) {
	inlines := []Inline{
		Link{Inlines: []Inline{Text{Value: "docs"}}, URL: "https://example.com"},
		Text{Value: " "},
		InlineImage{Alt: "diagram", URL: "img.png"},
	}

	got := PlainText(inlines)
	if got != "docs diagram" {
		t.Errorf("expected %q, got %q", "docs diagram", got)
	}
}

func TestPlainText_Strike(t *testing.T) {
	got := PlainText([]Inline{Strike{Inlines: []Inline{Text{Value: "old"}}}})
	if got != "old" {
		t.Errorf("expected %q, got %q", "old", got)
	}
}

func TestPlainText_Empty(t *testing.T) {
	if got := PlainText(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestDocument_HeadingsInSourceOrder(t *testing.T) {
	doc := &Document{Blocks: []Block{
		Heading{Level: 1, Inlines: []Inline{Text{Value: "Intro"}}},
		Paragraph{Inlines: []Inline{Text{Value: "body"}}},
		Heading{Level: 2, Inlines: []Inline{Text{Value: "Details"}}},
		CodeBlock{Code: "x := 1"},
		Heading{Level: 2, Inlines: []Inline{Text{Value: "More"}}},
	}}

	hs := doc.Headings()
	if len(hs) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(hs))
	}
	wantLevels := []int{1, 2, 2}
	wantText := []string{"Intro", "Details", "More"}
	for i, h := range hs {
		if h.Level != wantLevels[i] {
			t.Errorf("heading %d: expected level %d, got %d", i, wantLevels[i], h.Level)
		}
		if got := PlainText(h.Inlines); got != wantText[i] {
			t.Errorf("heading %d: expected text %q, got %q", i, wantText[i], got)
		}
	}
}

func TestDocument_HeadingsEmpty(t *testing.T) {
	doc := &Document{Blocks: []Block{Paragraph{}, HorizontalRule{}}}
	if hs := doc.Headings(); len(hs) != 0 {
		t.Errorf("expected no headings, got %d", len(hs))
	}
}
